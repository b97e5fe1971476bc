// Package research implements the model-fallback orchestration behind the
// research endpoint: building the deduplicated model chain for a request,
// driving one agent run per model in strict order, and reducing each run's
// event stream into a single result.
package research
