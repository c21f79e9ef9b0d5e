// Package app wires the dashboard server: configuration, logging, telemetry,
// the in-memory dataset, the websocket hub, the services and the chi router.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, .env, TPODASH_* variables)
//	2. Initialize logging and OpenTelemetry
//	3. Create the dataset store and the websocket hub
//	4. Create the dashboard and health services
//	5. Mount handlers and middleware
//	6. Start the hub and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, or until the listener fails, then shuts
// the server down within Server.ShutdownTimeout, closes websocket clients and
// flushes the telemetry providers. The package never calls os.Exit.
package app
