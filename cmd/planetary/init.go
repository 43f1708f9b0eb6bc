package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cygel-ai/planetary/config"
)

// runInit seeds the dataset files for every configured worker. Existing
// files are left alone so local additions survive re-initialization.
func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	for name, wc := range cfg.Workers {
		if wc.Dataset == "" {
			continue
		}
		if _, err := os.Stat(wc.Dataset); err == nil {
			fmt.Printf("Dataset already exists: %s\n", wc.Dataset)
			continue
		}

		seed, ok := seedDatasets[name]
		if !ok {
			seed = map[string]any{}
		}

		if err := writeSeed(wc.Dataset, seed); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed dataset for %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("Created dataset: %s\n", wc.Dataset)
	}

	fmt.Println("Resource initialization complete")
}

func writeSeed(path string, seed any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// seedDatasets hold the starter knowledge for the standard workers.
// Feedback grows these files over time; the seeds just make a fresh
// install useful immediately.
var seedDatasets = map[string]any{
	"Earth": map[string]any{
		"code_templates": map[string]map[string]string{
			"python": {
				"web_application": "from flask import Flask, jsonify\n\napp = Flask(__name__)\n\n@app.route('/api/users', methods=['GET'])\ndef get_users():\n    return jsonify({'users': []})\n\nif __name__ == '__main__':\n    app.run()\n",
				"api":             "from fastapi import FastAPI\nfrom pydantic import BaseModel\n\napp = FastAPI()\n\nclass User(BaseModel):\n    username: str\n\n@app.get('/api/users')\nasync def get_users():\n    return {'users': []}\n",
			},
		},
		"structure_patterns": map[string]map[string][]string{
			"python": {
				"web_application": {"models", "views", "controllers"},
				"api":             {"routers", "services", "schemas"},
			},
		},
	},
	"Moon": map[string]any{
		"error_patterns": map[string][]map[string]any{
			"python": {
				{"pattern": "IndentationError", "type": "indentation", "message": "Incorrect indentation", "severity": 8},
				{"pattern": "NameError", "type": "undefined_name", "message": "Name is not defined", "severity": 5},
			},
		},
		"correction_templates": map[string]map[string]map[string]any{
			"python": {
				"indentation": {
					"description": "Adjust indentation to match control flow",
					"example":     "if cond:\n    do_thing()",
				},
				"undefined_name": {
					"description": "Define the name before use or fix the typo",
					"example":     "value = compute()\nprint(value)",
				},
			},
		},
	},
	"Sun": map[string]any{
		"optimization_patterns": map[string]any{
			"python": map[string]any{
				"time_complexity": []map[string]any{
					{"pattern": "for i in range(len(", "complexity": "O(n^2)", "description": "index loop over a sequence", "suggestion": "iterate directly or use enumerate"},
				},
				"space_complexity": []map[string]any{
					{"pattern": "list(", "complexity": "O(n)", "type": "materialization", "suggestion": "use a generator expression", "impact": "medium"},
				},
				"bottlenecks": []map[string]any{
					{"pattern": "+ str(", "type": "string_concat", "location": "loop body", "severity": 6, "suggestion": "accumulate parts and join once"},
				},
			},
		},
		"benchmark_data": map[string]map[string]map[string]any{
			"python": {
				"memory": {"pattern": "readlines()", "current": 100, "optimal": 20, "improvement_potential": 80},
			},
		},
	},
}
