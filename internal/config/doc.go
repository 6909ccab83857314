// Package config provides configuration loading for the bridge.
//
// Configuration is YAML with two conveniences: ${VAR_NAME} references are
// expanded from the environment before parsing, and duration fields accept
// Go duration strings ("10s", "1m30s"). A missing file is an error; a missing
// field falls back to the defaults in Default.
package config
