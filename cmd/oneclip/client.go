package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"oneclip/internal/store"
	"oneclip/pkg/types"
)

// apiClient talks to a running daemon over its local HTTP API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(port int) *apiClient {
	return &apiClient{
		base: fmt.Sprintf("http://127.0.0.1:%d", port),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(method, path string, out interface{}) error {
	req, err := http.NewRequest(method, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("is the daemon running? (oneclip start): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("daemon returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) Status() (map[string]string, error) {
	var status map[string]string
	if err := c.do(http.MethodGet, "/status", &status); err != nil {
		return nil, err
	}
	return status, nil
}

func (c *apiClient) History(limit int) ([]types.Entry, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var items []types.Entry
	if err := c.do(http.MethodGet, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *apiClient) Search(query string, limit int) ([]types.Entry, error) {
	path := fmt.Sprintf("/api/search?q=%s&limit=%d", url.QueryEscape(query), limit)
	var items []types.Entry
	if err := c.do(http.MethodGet, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *apiClient) Paste(index int) error {
	return c.do(http.MethodPost, fmt.Sprintf("/api/history/%d/paste", index), nil)
}

func (c *apiClient) Delete(id string) error {
	return c.do(http.MethodDelete, "/api/history/"+url.PathEscape(id), nil)
}

func (c *apiClient) Favorite(id string) (types.Entry, error) {
	var entry types.Entry
	if err := c.do(http.MethodPost, "/api/history/"+url.PathEscape(id)+"/favorite", &entry); err != nil {
		return types.Entry{}, err
	}
	return entry, nil
}

func (c *apiClient) Clear() error {
	return c.do(http.MethodPost, "/api/history/clear", nil)
}

func (c *apiClient) StorageInfo() (store.Info, error) {
	var info store.Info
	if err := c.do(http.MethodGet, "/api/storage", &info); err != nil {
		return store.Info{}, err
	}
	return info, nil
}

func (c *apiClient) WipeStorage() error {
	return c.do(http.MethodPost, "/api/cleanup", nil)
}
