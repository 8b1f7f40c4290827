/*
Package observability provides Prometheus metrics for the flow editor.

Metrics live in their own registry so several editors (or tests) can run in one
process. Validation reports, clone operations, HTTP requests and store calls are
recorded through the helpers of Metrics; InstrumentStore wraps any
ports.ConfigStore.
*/
package observability
