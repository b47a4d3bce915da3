// Package license validates and manages the device-bound license blob.
package license

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"os"
	"time"

	"convertsave/internal/config"
	"convertsave/internal/logging"
)

// Plan is the license tier.
type Plan string

const (
	PlanMonthly  Plan = "Monthly"
	PlanYearly   Plan = "Yearly"
	PlanLifetime Plan = "Lifetime"
)

const (
	graceDays         = 2
	refreshWindowDays = 7
)

// Record is the decrypted license payload.
type Record struct {
	ProductKey      string     `json:"productKey"`
	MACAddress      string     `json:"macAddress"`
	Plan            Plan       `json:"plan"`
	SubscriptionEnd *time.Time `json:"subscriptionEnd,omitempty"`
	IssuedAt        time.Time  `json:"issuedAt"`
}

// Status is the UI-facing license state. DaysRemaining is nil for lifetime
// plans.
type Status struct {
	IsValid            bool   `json:"isValid"`
	IsActivated        bool   `json:"isActivated"`
	Plan               string `json:"plan,omitempty"`
	DaysRemaining      *int   `json:"daysRemaining,omitempty"`
	InGracePeriod      bool   `json:"inGracePeriod"`
	Error              string `json:"error,omitempty"`
	RequiresActivation bool   `json:"requiresActivation"`
}

// Manager owns the on-disk blob and talks to the license service.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	api    *apiClient

	// test seams
	deviceID func() (string, error)
	now      func() time.Time
}

// Option adjusts a Manager.
type Option func(*Manager)

// WithHTTPClient substitutes the license API's HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Manager) { m.api = newAPIClient(m.cfg.License.APIURL, hc) }
}

func NewManager(cfg *config.Config, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "license"),
		api:      newAPIClient(cfg.License.APIURL, nil),
		deviceID: DeviceID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DeviceID reports this machine's license-binding identity.
func (m *Manager) DeviceID() (string, error) {
	return m.deviceID()
}

// CurrentProductKey returns the product key of the stored license, or an
// error when no license is stored.
func (m *Manager) CurrentProductKey() (string, error) {
	rec, _, err := m.loadRecord()
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.ProductKey, nil
}

// Startup resolves the license state at application start. A stored blob is
// validated locally and opportunistically refreshed near expiry; with no
// stored blob the server is asked whether this device has a license.
func (m *Manager) Startup(ctx context.Context) Status {
	mac, err := m.deviceID()
	if err != nil {
		return Status{Error: err.Error()}
	}

	rec, blob, err := m.loadRecord()
	switch {
	case err == nil:
		return m.statusWithRefresh(ctx, rec, blob, mac)
	case errors.Is(err, os.ErrNotExist):
		return m.lookupAndPersist(ctx, mac)
	default:
		// Corrupt or foreign blob. Discard it and fall back to lookup.
		m.logger.Warn("discarding unreadable license blob", logging.Error(err))
		os.Remove(m.cfg.LicenseBlobPath())
		return m.lookupAndPersist(ctx, mac)
	}
}

// Activate validates a product key with the server and stores the returned
// license.
func (m *Manager) Activate(ctx context.Context, productKey string) Status {
	mac, err := m.deviceID()
	if err != nil {
		return Status{Error: err.Error()}
	}
	host, _ := os.Hostname()
	resp, err := m.api.validate(ctx, productKey, mac, host)
	if err != nil {
		return Status{RequiresActivation: true, Error: err.Error()}
	}
	if resp.License == "" {
		return Status{RequiresActivation: true, Error: "license server returned no license"}
	}
	rec, err := DecryptRecord(resp.License)
	if err != nil {
		return Status{RequiresActivation: true, Error: err.Error()}
	}
	if err := m.saveBlob(resp.License); err != nil {
		return Status{RequiresActivation: true, Error: err.Error()}
	}
	m.logger.Info("license activated", logging.String("plan", string(rec.Plan)))
	return m.evaluate(rec, mac)
}

// Deactivate releases the license server-side and deletes the local blob.
func (m *Manager) Deactivate(ctx context.Context) Status {
	mac, err := m.deviceID()
	if err != nil {
		return Status{Error: err.Error()}
	}
	_, blob, err := m.loadRecord()
	if err != nil {
		return Status{RequiresActivation: true, Error: "no license to deactivate"}
	}
	if err := m.api.deactivate(ctx, blob, mac); err != nil {
		return Status{IsActivated: true, Error: err.Error()}
	}
	os.Remove(m.cfg.LicenseBlobPath())
	m.logger.Info("license deactivated")
	return Status{RequiresActivation: true}
}

// ChangeProductKey swaps the stored license for one issued against the new
// key. The old license is released best-effort first.
func (m *Manager) ChangeProductKey(ctx context.Context, productKey string) Status {
	if mac, err := m.deviceID(); err == nil {
		if _, blob, loadErr := m.loadRecord(); loadErr == nil {
			if err := m.api.deactivate(ctx, blob, mac); err != nil {
				m.logger.Warn("release of previous license failed", logging.Error(err))
			}
		}
	}
	os.Remove(m.cfg.LicenseBlobPath())
	return m.Activate(ctx, productKey)
}

func (m *Manager) lookupAndPersist(ctx context.Context, mac string) Status {
	resp, err := m.api.lookup(ctx, mac)
	if errors.Is(err, ErrNoLicense) {
		return Status{RequiresActivation: true}
	}
	if err != nil {
		return Status{Error: err.Error()}
	}
	rec, err := DecryptRecord(resp.License)
	if err != nil {
		return Status{RequiresActivation: true, Error: err.Error()}
	}
	if err := m.saveBlob(resp.License); err != nil {
		return Status{Error: err.Error()}
	}
	return m.evaluate(rec, mac)
}

// statusWithRefresh evaluates the stored record and, near expiry or in the
// grace window, asks the server for a fresh license. Refresh is best-effort;
// network failure falls back to the local evaluation.
func (m *Manager) statusWithRefresh(ctx context.Context, rec Record, blob, mac string) Status {
	status := m.evaluate(rec, mac)
	if !m.shouldRefresh(status) {
		return status
	}

	resp, err := m.api.refresh(ctx, blob, mac)
	if err != nil {
		m.logger.Warn("license refresh failed", logging.Error(err))
		return status
	}
	if resp.IsActive != nil && !*resp.IsActive {
		os.Remove(m.cfg.LicenseBlobPath())
		return Status{RequiresActivation: true, Error: "license was deactivated remotely"}
	}
	if resp.License == "" {
		return status
	}
	fresh, err := DecryptRecord(resp.License)
	if err != nil {
		m.logger.Warn("refreshed license unreadable", logging.Error(err))
		return status
	}
	if err := m.saveBlob(resp.License); err != nil {
		m.logger.Warn("persisting refreshed license failed", logging.Error(err))
		return status
	}
	return m.evaluate(fresh, mac)
}

func (m *Manager) shouldRefresh(status Status) bool {
	if !status.IsActivated || status.DaysRemaining == nil {
		return false
	}
	if status.InGracePeriod {
		return true
	}
	return status.IsValid && *status.DaysRemaining <= refreshWindowDays
}

// evaluate applies the device-binding and time checks to a decrypted record.
func (m *Manager) evaluate(rec Record, mac string) Status {
	if !SameDevice(rec.MACAddress, mac) {
		return Status{
			IsActivated: true,
			Plan:        string(rec.Plan),
			Error:       "license is bound to a different device",
		}
	}

	if rec.Plan == PlanLifetime {
		return Status{IsValid: true, IsActivated: true, Plan: string(rec.Plan)}
	}

	if rec.SubscriptionEnd == nil {
		return Status{
			IsActivated: true,
			Plan:        string(rec.Plan),
			Error:       "license has no expiry date",
		}
	}

	days := int(math.Floor(rec.SubscriptionEnd.Sub(m.now().UTC()).Hours() / 24))
	status := Status{
		IsActivated:   true,
		Plan:          string(rec.Plan),
		DaysRemaining: &days,
	}
	switch {
	case days < -graceDays:
		status.Error = "license has expired"
	case days < 0:
		status.IsValid = true
		status.InGracePeriod = true
	default:
		status.IsValid = true
	}
	return status
}

func (m *Manager) loadRecord() (Record, string, error) {
	raw, err := os.ReadFile(m.cfg.LicenseBlobPath())
	if err != nil {
		return Record{}, "", err
	}
	blob := string(raw)
	rec, err := DecryptRecord(blob)
	if err != nil {
		return Record{}, "", err
	}
	return rec, blob, nil
}

func (m *Manager) saveBlob(blob string) error {
	if err := m.cfg.EnsureDirectories(); err != nil {
		return err
	}
	if err := os.WriteFile(m.cfg.LicenseBlobPath(), []byte(blob), 0o600); err != nil {
		return fmt.Errorf("write license blob: %w", err)
	}
	return nil
}
