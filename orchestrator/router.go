package orchestrator

// Router maps a task type to the worker names required to handle it.
// The table is static: it is built once at startup and read-only
// afterwards, so Route needs no locking and is a pure lookup.
type Router struct {
	table         map[string][]string
	defaultWorker string
}

// NewRouter builds a router from the routing table and the fallback
// worker for unmapped types.
func NewRouter(table map[string][]string, defaultWorker string) *Router {
	copied := make(map[string][]string, len(table))
	for taskType, workers := range table {
		copied[taskType] = append([]string(nil), workers...)
	}
	return &Router{table: copied, defaultWorker: defaultWorker}
}

// Route returns the worker names assigned to the task type. Unmapped
// types route to the default worker instead of failing, so every
// submission produces a non-empty assignment. This default-routing is an
// explicit policy, not an error path.
func (r *Router) Route(taskType string) []string {
	if workers, ok := r.table[taskType]; ok {
		return append([]string(nil), workers...)
	}
	return []string{r.defaultWorker}
}

// DefaultWorker returns the fallback worker name.
func (r *Router) DefaultWorker() string {
	return r.defaultWorker
}

// Types returns the number of mapped task types.
func (r *Router) Types() int {
	return len(r.table)
}
