// Package config defines the YAML configuration surface for the Anvil
// weather proxy and its loading pipeline.
//
// Configuration is resolved in four steps: the file is read and parsed,
// defaults are applied to unset fields, ANVIL_* environment variables
// override individual values, and the result is validated as a whole.
// Every key is optional; an empty file (or no file at all) yields the
// built-in production configuration.
//
// The Watcher provides optional hot-reload: it re-reads the file on change
// and applies the logging level through a shared slog.LevelVar. All other
// settings require a restart, which the watcher calls out in the log.
package config
