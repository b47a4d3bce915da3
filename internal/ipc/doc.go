// Package ipc exposes the conversion service over JSON-RPC Unix sockets and
// ships the matching client used by the CLI and the desktop shell.
//
// It owns socket lifecycle management and the request/response DTOs for
// every command: format suggestions, conversions, tool provisioning with
// polled progress events, update checks, and license operations.
package ipc
