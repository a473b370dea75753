// Package config holds the session and scouting configuration for the
// zlink façade, with YAML loading for file-based setups.
package config
