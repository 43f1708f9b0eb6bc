package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// loadDataset reads a worker's JSON dataset into out. A missing file is
// not an error: the worker starts with an empty dataset and can still be
// grown through feedback.
func loadDataset(path string, out any, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("dataset not found, starting empty", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return nil
}

// saveDataset writes a worker's dataset back to disk after a feedback
// update. Workers without a dataset path skip persistence.
func saveDataset(path string, in any, logger *zap.Logger) {
	if path == "" {
		return
	}
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		logger.Warn("failed to encode dataset", zap.String("path", path), zap.Error(err))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("failed to persist dataset", zap.String("path", path), zap.Error(err))
	}
}
