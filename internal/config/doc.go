// Package config loads dashboard configuration from defaults, an optional YAML
// file and the environment.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority, a .env file is loaded first)
//	2. config.yaml or configs/config.yaml
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TPODASH_<SECTION>_<FIELD>:
//
//	TPODASH_SERVER_PORT=8080
//	TPODASH_LOGGING_LEVEL=debug
//	TPODASH_UPLOAD_MAX_FILES=50
//	TPODASH_SECURITY_ALLOWED_ORIGINS=http://localhost:5173,http://localhost:8080
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
