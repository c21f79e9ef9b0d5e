// Package http implements the dashboard's HTTP handlers. Handlers parse and
// validate the request, call the dashboard service, and render either a
// {"status":"success","data":...} body or an RFC 7807 problem.
//
// Service sentinel errors are mapped to problems in errors.go. Query parameters
// that take several values accept both repeated keys (dept=a&dept=b) and a
// comma separated list (dept=a,b).
//
// Routes:
//
//	GET    /healthz                       liveness
//	GET    /healthz/ready                 readiness, 503 when not ready
//	GET    /api/v1/version
//	GET    /api/v1/files
//	POST   /api/v1/files/results          multipart field "files"
//	POST   /api/v1/files/grades           multipart field "files"
//	DELETE /api/v1/files/{id}
//	POST   /api/v1/manifest               {"path": "..."}
//	GET    /api/v1/overview
//	GET    /api/v1/dashboard/departments  semester, dept
//	GET    /api/v1/dashboard/students     dept, bucket, year, q, student, semester
//	GET    /api/v1/export/{table}.csv     semester, dept, student
//	GET    /ws
package http
