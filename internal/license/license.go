// Package license talks to the OneClip license backend and persists the
// resulting activation state locally.
package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	verifyPath   = "/api/verify-license-3"
	platformName = "macOS"
	stateFile    = "activation.json"
)

// Client verifies activation codes against the license backend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a license client for the given backend base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type verifyRequest struct {
	License    string `json:"license"`
	Email      string `json:"email"`
	AppVersion string `json:"appVersion"`
	Platform   string `json:"platform"`
	DeviceName string `json:"device_name"`
	DeviceID   string `json:"device_id"`
}

type verifyResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Code        string `json:"code"`
	IsValid     bool   `json:"isValid"`
	LicenseType string `json:"licenseType"`
	ExpiresAt   string `json:"expiresAt"`
}

// Activation is the locally persisted license state.
type Activation struct {
	Email       string    `json:"email"`
	License     string    `json:"license"`
	LicenseType string    `json:"licenseType"`
	ExpiresAt   string    `json:"expiresAt"`
	ActivatedAt time.Time `json:"activatedAt"`
}

// Verify checks an activation code with the backend.
func (c *Client) Verify(ctx context.Context, email, code, appVersion, deviceName, deviceID string) (*Activation, error) {
	body, err := json.Marshal(verifyRequest{
		License:    code,
		Email:      email,
		AppVersion: appVersion,
		Platform:   platformName,
		DeviceName: deviceName,
		DeviceID:   deviceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("license server unreachable: %w", err)
	}
	defer resp.Body.Close()

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	if !vr.Success || !vr.IsValid {
		msg := vr.Message
		if msg == "" {
			msg = vr.Code
		}
		return nil, fmt.Errorf("license verification failed: %s", msg)
	}

	return &Activation{
		Email:       email,
		License:     code,
		LicenseType: vr.LicenseType,
		ExpiresAt:   vr.ExpiresAt,
		ActivatedAt: time.Now(),
	}, nil
}

// Manager persists activation state under the app's storage root.
type Manager struct {
	client *Client
	dir    string
}

// NewManager creates a Manager storing state in dir.
func NewManager(client *Client, dir string) *Manager {
	return &Manager{client: client, dir: dir}
}

// Activate verifies the code and stores the activation on success.
func (m *Manager) Activate(ctx context.Context, email, code, appVersion, deviceName, deviceID string) (*Activation, error) {
	activation, err := m.client.Verify(ctx, email, code, appVersion, deviceName, deviceID)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(activation, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode activation: %w", err)
	}
	if err := os.WriteFile(m.statePath(), data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write activation state: %w", err)
	}
	return activation, nil
}

// Current returns the stored activation, or nil when the app was never
// activated on this machine.
func (m *Manager) Current() (*Activation, error) {
	data, err := os.ReadFile(m.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read activation state: %w", err)
	}

	var activation Activation
	if err := json.Unmarshal(data, &activation); err != nil {
		return nil, fmt.Errorf("failed to decode activation state: %w", err)
	}
	return &activation, nil
}

// Deactivate removes the stored activation.
func (m *Manager) Deactivate() error {
	if err := os.Remove(m.statePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove activation state: %w", err)
	}
	return nil
}

func (m *Manager) statePath() string {
	return filepath.Join(m.dir, stateFile)
}
