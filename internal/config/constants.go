package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "TPO Dashboard"
	AppVersion = "1.0.0"

	// Environment
	EnvPrefix = "TPODASH"
	EnvFile   = ".env"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// WebSocket
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Uploads
	DefaultMaxUploadBytes = 32 << 20 // 32MB per request
	DefaultMaxUploadFiles = 20
	DefaultExportDir      = "exports"
	DefaultDataDir        = "data"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "logs/app.log"

	// API Endpoints
	APIBasePath       = "/api/v1"
	HealthEndpoint    = "/healthz"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
