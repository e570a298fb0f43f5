// Package config loads the ringwindow service configuration.
//
// A Config has four sections: buffer (window name, ring capacity, overwrite
// policy, schema validation and the eviction rate at which the window reports
// degraded), nats (server URL and subject; an empty URL disables ingestion),
// metrics (HTTP port and path) and log (level and format).
//
// # Loading
//
// Load reads a JSON or YAML file, chosen by extension, over Default(). Fields
// missing from the file keep their defaults. RINGWINDOW_* environment variables
// are applied next, then the result is validated:
//
//	cfg, err := config.Load("/etc/ringwindow/config.yaml")
//	if err != nil {
//		return err
//	}
//
// Parse decodes bytes without touching the environment or validating, which
// suits tests and embedded configuration.
//
// # Environment Overrides
//
//	RINGWINDOW_BUFFER_NAME             buffer.name
//	RINGWINDOW_BUFFER_CAPACITY         buffer.capacity
//	RINGWINDOW_BUFFER_ALLOW_OVERWRITE  buffer.allow_overwrite
//	RINGWINDOW_BUFFER_VALIDATE_SCHEMA  buffer.validate_schema
//	RINGWINDOW_BUFFER_INGEST_WORKERS   buffer.ingest_workers
//	RINGWINDOW_NATS_URL                nats.url
//	RINGWINDOW_NATS_SUBJECT            nats.subject
//	RINGWINDOW_METRICS_ENABLED         metrics.enabled
//	RINGWINDOW_METRICS_PORT            metrics.port
//	RINGWINDOW_LOG_LEVEL               log.level
//	RINGWINDOW_LOG_FORMAT              log.format
//
// # Errors
//
// Every failure is classified invalid and matches errors.ErrInvalidConfig,
// except a missing file, which matches errors.ErrConfigNotFound.
//
// # Security
//
// Files must be JSON or YAML, regular, at most 1MB, and relative paths may not
// escape the working directory. JSON nesting depth is limited before decoding.
package config
