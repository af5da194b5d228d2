//go:build !darwin

package watcher

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.design/x/clipboard"

	"oneclip/pkg/types"
)

const pollInterval = 500 * time.Millisecond

// PollMonitor is the non-macOS fallback. It polls text and image formats via
// golang.design/x/clipboard; when no display environment is available it runs
// as a no-op so headless use (tests, CI, servers) still works.
type PollMonitor struct {
	handler  func(types.Entry)
	headless bool
	lastText []byte
	lastImg  []byte
	mutex    sync.RWMutex
	stopChan chan struct{}
}

func NewMonitor() Monitor {
	m := &PollMonitor{stopChan: make(chan struct{})}
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, watcher running headless", "error", err)
		m.headless = true
	}
	return m
}

func (m *PollMonitor) Start() error {
	if m.headless {
		return nil
	}

	m.mutex.Lock()
	m.lastText = clipboard.Read(clipboard.FmtText)
	m.lastImg = clipboard.Read(clipboard.FmtImage)
	m.mutex.Unlock()

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.checkForChanges()
			case <-m.stopChan:
				return
			}
		}
	}()

	return nil
}

func (m *PollMonitor) Stop() error {
	close(m.stopChan)
	return nil
}

func (m *PollMonitor) OnChange(handler func(types.Entry)) {
	m.mutex.Lock()
	m.handler = handler
	m.mutex.Unlock()
}

func (m *PollMonitor) SetContent(entry types.Entry) error {
	if m.headless {
		return fmt.Errorf("clipboard unavailable on this system")
	}

	switch entry.Type {
	case types.TypeText:
		m.rememberText([]byte(entry.Content))
		clipboard.Write(clipboard.FmtText, []byte(entry.Content))
	case types.TypeImage:
		data := entry.Data
		if len(data) == 0 && entry.FilePath != "" {
			read, err := os.ReadFile(entry.FilePath)
			if err != nil {
				return fmt.Errorf("failed to read image sidecar: %w", err)
			}
			data = read
		}
		m.rememberImage(data)
		clipboard.Write(clipboard.FmtImage, data)
	default:
		return fmt.Errorf("unsupported content type: %s", entry.Type)
	}
	return nil
}

func (m *PollMonitor) rememberText(text []byte) {
	m.mutex.Lock()
	m.lastText = text
	m.mutex.Unlock()
}

func (m *PollMonitor) rememberImage(img []byte) {
	m.mutex.Lock()
	m.lastImg = img
	m.mutex.Unlock()
}

func (m *PollMonitor) checkForChanges() {
	text := clipboard.Read(clipboard.FmtText)
	img := clipboard.Read(clipboard.FmtImage)

	m.mutex.Lock()
	textChanged := len(text) > 0 && !bytes.Equal(text, m.lastText)
	imgChanged := len(img) > 0 && !bytes.Equal(img, m.lastImg)
	m.lastText = text
	m.lastImg = img
	handler := m.handler
	m.mutex.Unlock()

	if handler == nil {
		return
	}

	if textChanged {
		handler(types.NewEntry(types.TypeText, string(text), nil))
	} else if imgChanged {
		handler(types.NewEntry(types.TypeImage, "Image", img))
	}
}
