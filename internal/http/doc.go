// Package http exposes the gym dashboard reports and the add-member form as a JSON API.
//
// The router exposes the following endpoints:
//   - GET /healthz: 200 {"status":"ok"} when a connection can be acquired, 503 otherwise.
//   - GET /metrics: Prometheus exposition of the statement latency and failure collectors.
//   - GET /plans: membership plans for the add-member form as {"plans":[{"id","name"}]}.
//   - POST /members: body {"name","join_date":"YYYY-MM-DD","plan_id"}. Returns 201 once the
//     member and the initial payment are stored. Database rejections (unknown plan, empty
//     name) return 422 with the reason in `error_code`.
//   - GET /reports/roster?limit=10|25|50|100|all (default 10)
//   - GET /reports/growth: also carries a `summary` with total, best and most recent month.
//   - GET /reports/events, GET /reports/trainers
//   - GET /reports/expiring?month=YYYY-MM (default: current month)
//   - GET /reports/trainer-performance, GET /reports/top-events
//   - GET /reports/plan-distribution, GET /reports/daily-signups
//
// Every report responds with the `reportResponse` payload defined in report_handler.go:
// {"report","columns","rows","row_count","empty","message"}. An empty report is a 200 with
// `empty: true` and an informational message. Connection failures map to 503, query
// failures to 500, and invalid parameters to 422.
package http
