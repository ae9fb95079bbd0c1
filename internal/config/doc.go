// Package config loads and validates the TOML configuration for the
// fulfillment pipeline. Secrets (partner API token, storage access key)
// are taken from the environment, with an optional .env file loaded at
// startup, so they never live in the config file on disk.
package config
