package ipc

import (
	"convertsave/internal/api"
	"convertsave/internal/daemon"
	"convertsave/internal/format"
	"convertsave/internal/history"
	"convertsave/internal/license"
	"convertsave/internal/updates"
)

// Suggestion mirrors the format-suggestion DTO for IPC callers.
type Suggestion = format.Suggestion

// FileInfo mirrors the file metadata DTO.
type FileInfo = api.FileInfo

// ToolStatus mirrors per-tool availability.
type ToolStatus = api.ToolStatus

// TestToolResult mirrors the tool self-test outcome.
type TestToolResult = api.TestToolResult

// UpdateInfo mirrors the per-tool update check result.
type UpdateInfo = updates.Info

// LicenseStatus mirrors the UI-facing license state.
type LicenseStatus = license.Status

// HistoryEntry mirrors one recorded conversion.
type HistoryEntry = history.Entry

// ProgressEvent mirrors one buffered provisioning event.
type ProgressEvent = daemon.SeqEvent

// StatusRequest fetches daemon runtime details.
type StatusRequest struct{}

// StatusResponse describes the running daemon.
type StatusResponse struct {
	Running       bool   `json:"running"`
	PID           int    `json:"pid"`
	SocketPath    string `json:"socket_path"`
	DataDir       string `json:"data_dir"`
	HistoryDBPath string `json:"history_db_path"`
}

// FormatsRequest asks for conversion targets for an input extension.
type FormatsRequest struct {
	Extension string `json:"extension"`
}

// FormatsResponse lists the offered targets.
type FormatsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// ConvertRequest runs one conversion.
type ConvertRequest struct {
	InputPath    string `json:"input_path"`
	OutputFormat string `json:"output_format"`
	OutputDir    string `json:"output_dir,omitempty"`
	Extra        string `json:"extra,omitempty"`
}

// ConvertResponse carries the produced path.
type ConvertResponse struct {
	OutputPath string `json:"output_path"`
}

// ImagesToPDFRequest combines images into one PDF.
type ImagesToPDFRequest struct {
	InputPaths []string `json:"input_paths"`
	OutputDir  string   `json:"output_dir,omitempty"`
}

// ImagesToPDFResponse carries the produced path.
type ImagesToPDFResponse struct {
	OutputPath string `json:"output_path"`
}

// FileInfoRequest stats a file.
type FileInfoRequest struct {
	Path string `json:"path"`
}

// FileInfoResponse carries the metadata.
type FileInfoResponse struct {
	Info FileInfo `json:"info"`
}

// OpenFolderRequest reveals a path in the file manager.
type OpenFolderRequest struct {
	Path string `json:"path"`
}

// OpenFolderResponse is empty on success.
type OpenFolderResponse struct{}

// DownloadToolRequest installs or upgrades a tool.
type DownloadToolRequest struct {
	Tool string `json:"tool"`
}

// DownloadToolResponse reports the install outcome.
type DownloadToolResponse struct {
	Message string `json:"message"`
}

// DownloadEventsRequest polls buffered progress events past a cursor.
type DownloadEventsRequest struct {
	After int64 `json:"after"`
}

// DownloadEventsResponse returns events in enqueue order and the cursor for
// the next poll.
type DownloadEventsResponse struct {
	Events []ProgressEvent `json:"events"`
	Cursor int64           `json:"cursor"`
}

// TestToolRequest runs a tool's version command.
type TestToolRequest struct {
	Tool string `json:"tool"`
}

// TestToolResponse carries the banner and resolved path.
type TestToolResponse struct {
	Result TestToolResult `json:"result"`
}

// ToolsStatusRequest fetches availability for every tool.
type ToolsStatusRequest struct{}

// ToolsStatusResponse maps tool id to status.
type ToolsStatusResponse struct {
	Tools map[string]ToolStatus `json:"tools"`
}

// CheckUpdatesRequest compares installed tools against upstream releases.
type CheckUpdatesRequest struct{}

// CheckUpdatesResponse maps tool id to update information.
type CheckUpdatesResponse struct {
	Tools map[string]UpdateInfo `json:"tools"`
}

// SetToolPathRequest records a binary override for a tool.
type SetToolPathRequest struct {
	Tool string `json:"tool"`
	Path string `json:"path"`
}

// SetToolPathResponse is empty on success.
type SetToolPathResponse struct{}

// ClearToolPathRequest removes a binary override.
type ClearToolPathRequest struct {
	Tool string `json:"tool"`
}

// ClearToolPathResponse is empty on success.
type ClearToolPathResponse struct{}

// LicenseStatusRequest fetches the current license state.
type LicenseStatusRequest struct{}

// LicenseStatusResponse carries the license state.
type LicenseStatusResponse struct {
	Status LicenseStatus `json:"status"`
}

// ActivateLicenseRequest validates and stores a product key.
type ActivateLicenseRequest struct {
	ProductKey string `json:"product_key"`
}

// DeactivateLicenseRequest releases the license for this device.
type DeactivateLicenseRequest struct{}

// ChangeProductKeyRequest swaps the license for one on a new key.
type ChangeProductKeyRequest struct {
	ProductKey string `json:"product_key"`
}

// DeviceIDRequest fetches the license-binding identity.
type DeviceIDRequest struct{}

// DeviceIDResponse carries the MAC-derived identity.
type DeviceIDResponse struct {
	DeviceID string `json:"device_id"`
}

// ProductKeyRequest fetches the stored product key.
type ProductKeyRequest struct{}

// ProductKeyResponse carries the stored product key.
type ProductKeyResponse struct {
	ProductKey string `json:"product_key"`
}

// HistoryRequest lists recent conversions.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse carries recent conversions, newest first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}
