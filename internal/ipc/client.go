package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon's runtime details.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("ConvertSave.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AvailableFormats lists conversion targets for an input extension.
func (c *Client) AvailableFormats(extension string) (*FormatsResponse, error) {
	var resp FormatsResponse
	if err := c.client.Call("ConvertSave.AvailableFormats", FormatsRequest{Extension: extension}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConvertFile runs one conversion and returns the produced path.
func (c *Client) ConvertFile(req ConvertRequest) (*ConvertResponse, error) {
	var resp ConvertResponse
	if err := c.client.Call("ConvertSave.ConvertFile", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConvertImagesToPDF combines images into one PDF.
func (c *Client) ConvertImagesToPDF(req ImagesToPDFRequest) (*ImagesToPDFResponse, error) {
	var resp ImagesToPDFResponse
	if err := c.client.Call("ConvertSave.ConvertImagesToPDF", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FileInfo stats a file.
func (c *Client) FileInfo(path string) (*FileInfoResponse, error) {
	var resp FileInfoResponse
	if err := c.client.Call("ConvertSave.FileInfo", FileInfoRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OpenFolder reveals a path in the platform file manager.
func (c *Client) OpenFolder(path string) error {
	var resp OpenFolderResponse
	return c.client.Call("ConvertSave.OpenFolder", OpenFolderRequest{Path: path}, &resp)
}

// DownloadTool installs or upgrades a tool.
func (c *Client) DownloadTool(tool string) (*DownloadToolResponse, error) {
	var resp DownloadToolResponse
	if err := c.client.Call("ConvertSave.DownloadTool", DownloadToolRequest{Tool: tool}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DownloadEvents polls buffered progress events past the cursor.
func (c *Client) DownloadEvents(after int64) (*DownloadEventsResponse, error) {
	var resp DownloadEventsResponse
	if err := c.client.Call("ConvertSave.DownloadEvents", DownloadEventsRequest{After: after}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestTool runs a tool's version command.
func (c *Client) TestTool(tool string) (*TestToolResponse, error) {
	var resp TestToolResponse
	if err := c.client.Call("ConvertSave.TestTool", TestToolRequest{Tool: tool}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ToolsStatus fetches availability for every tool.
func (c *Client) ToolsStatus() (*ToolsStatusResponse, error) {
	var resp ToolsStatusResponse
	if err := c.client.Call("ConvertSave.ToolsStatus", ToolsStatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckUpdates compares installed tools against upstream releases.
func (c *Client) CheckUpdates() (*CheckUpdatesResponse, error) {
	var resp CheckUpdatesResponse
	if err := c.client.Call("ConvertSave.CheckUpdates", CheckUpdatesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetToolPath records a binary override for a tool.
func (c *Client) SetToolPath(tool, path string) error {
	var resp SetToolPathResponse
	return c.client.Call("ConvertSave.SetToolPath", SetToolPathRequest{Tool: tool, Path: path}, &resp)
}

// ClearToolPath removes a binary override.
func (c *Client) ClearToolPath(tool string) error {
	var resp ClearToolPathResponse
	return c.client.Call("ConvertSave.ClearToolPath", ClearToolPathRequest{Tool: tool}, &resp)
}

// LicenseStatus fetches the current license state.
func (c *Client) LicenseStatus() (*LicenseStatusResponse, error) {
	var resp LicenseStatusResponse
	if err := c.client.Call("ConvertSave.LicenseStatus", LicenseStatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActivateLicense validates and stores a product key.
func (c *Client) ActivateLicense(productKey string) (*LicenseStatusResponse, error) {
	var resp LicenseStatusResponse
	if err := c.client.Call("ConvertSave.ActivateLicense", ActivateLicenseRequest{ProductKey: productKey}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeactivateLicense releases the license for this device.
func (c *Client) DeactivateLicense() (*LicenseStatusResponse, error) {
	var resp LicenseStatusResponse
	if err := c.client.Call("ConvertSave.DeactivateLicense", DeactivateLicenseRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangeProductKey swaps the license for one on a new key.
func (c *Client) ChangeProductKey(productKey string) (*LicenseStatusResponse, error) {
	var resp LicenseStatusResponse
	if err := c.client.Call("ConvertSave.ChangeProductKey", ChangeProductKeyRequest{ProductKey: productKey}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeviceID fetches the license-binding identity.
func (c *Client) DeviceID() (*DeviceIDResponse, error) {
	var resp DeviceIDResponse
	if err := c.client.Call("ConvertSave.DeviceID", DeviceIDRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentProductKey fetches the stored product key.
func (c *Client) CurrentProductKey() (*ProductKeyResponse, error) {
	var resp ProductKeyResponse
	if err := c.client.Call("ConvertSave.CurrentProductKey", ProductKeyRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecentConversions lists recent conversions, newest first.
func (c *Client) RecentConversions(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.client.Call("ConvertSave.RecentConversions", HistoryRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
