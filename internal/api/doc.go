// Package api implements the application command surface: conversions,
// format suggestions, tool management, license operations, and history.
// The IPC layer exposes these operations to clients; the daemon owns the
// wiring.
package api
