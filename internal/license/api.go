package license

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// defaultAPIURL is the license service root. Production builds override it
// with -ldflags "-X convertsave/internal/license.defaultAPIURL=...".
var defaultAPIURL = "https://api.convertsave.app/v1/license"

// ErrNoLicense is returned by lookup when the server knows no license for
// this device.
var ErrNoLicense = errors.New("no license registered for this device")

const apiTimeout = 5 * time.Minute

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(baseURL string, hc *http.Client) *apiClient {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: apiTimeout}
	}
	return &apiClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// apiResponse is the common envelope of all license endpoints. License
// carries an encrypted blob in the same format as the on-disk file.
type apiResponse struct {
	License  string `json:"license,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (c *apiClient) lookup(ctx context.Context, mac string) (apiResponse, error) {
	resp, status, err := c.post(ctx, "/lookup", map[string]string{"macAddress": mac})
	if err != nil {
		return apiResponse{}, err
	}
	if status == http.StatusNotFound {
		return apiResponse{}, ErrNoLicense
	}
	if status < 200 || status > 299 {
		return apiResponse{}, apiError("lookup", status, resp)
	}
	if resp.License == "" {
		return apiResponse{}, ErrNoLicense
	}
	return resp, nil
}

func (c *apiClient) validate(ctx context.Context, productKey, mac, deviceName string) (apiResponse, error) {
	body := map[string]string{"productKey": productKey, "macAddress": mac}
	if deviceName != "" {
		body["deviceName"] = deviceName
	}
	resp, status, err := c.post(ctx, "/validate", body)
	if err != nil {
		return apiResponse{}, err
	}
	if status < 200 || status > 299 {
		return apiResponse{}, apiError("validate", status, resp)
	}
	return resp, nil
}

func (c *apiClient) deactivate(ctx context.Context, blob, mac string) error {
	resp, status, err := c.post(ctx, "/deactivate", map[string]string{"license": blob, "macAddress": mac})
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return apiError("deactivate", status, resp)
	}
	return nil
}

func (c *apiClient) refresh(ctx context.Context, blob, mac string) (apiResponse, error) {
	resp, status, err := c.post(ctx, "/refresh", map[string]string{"license": blob, "macAddress": mac})
	if err != nil {
		return apiResponse{}, err
	}
	if status < 200 || status > 299 {
		return apiResponse{}, apiError("refresh", status, resp)
	}
	return resp, nil
}

func (c *apiClient) post(ctx context.Context, path string, body any) (apiResponse, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return apiResponse{}, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apiResponse{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, 0, fmt.Errorf("license server unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	var resp apiResponse
	// Error statuses still carry a JSON envelope when the server produced
	// them; decode failures on those are ignored.
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil && httpResp.StatusCode < 300 {
		return apiResponse{}, 0, fmt.Errorf("decode license response: %w", err)
	}
	return resp, httpResp.StatusCode, nil
}

func apiError(op string, status int, resp apiResponse) error {
	if resp.Error != "" {
		return fmt.Errorf("license %s failed: %s", op, resp.Error)
	}
	return fmt.Errorf("license %s failed: HTTP %d", op, status)
}
