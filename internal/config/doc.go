// Package config loads and validates the ConvertSave daemon configuration
// and the per-user tool override record. The daemon configuration is a TOML
// file; tool overrides persist as config.json in the app data directory so
// the desktop shell can share them.
package config
