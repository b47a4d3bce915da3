// Package tools defines the identifiers and per-platform metadata for the
// external converter binaries ConvertSave orchestrates.
package tools
