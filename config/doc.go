// Package config loads process-level settings for the educaia binaries from an
// optional YAML file and EDUCAIA_* environment variables.
package config
