// Package format holds the static format-capability tables: which
// extensions each external tool accepts and produces, extension
// classification, and the UI-facing suggestion list. The tables are
// compile-time data; nothing is discovered from installed binaries.
package format
