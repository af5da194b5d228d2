//go:build darwin

package watcher

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/progrium/darwinkit/macos/appkit"

	"oneclip/pkg/types"
)

const pollInterval = 500 * time.Millisecond

type DarwinMonitor struct {
	handler     func(types.Entry)
	pasteboard  appkit.Pasteboard
	changeCount int
	mutex       sync.RWMutex
	stopChan    chan struct{}
}

func init() {
	// AppKit requires the main thread.
	runtime.LockOSThread()
}

func NewMonitor() Monitor {
	runtime.LockOSThread()

	return &DarwinMonitor{
		pasteboard: appkit.Pasteboard_GeneralPasteboard(),
		stopChan:   make(chan struct{}),
	}
}

func (m *DarwinMonitor) Start() error {
	m.mutex.Lock()
	m.changeCount = m.pasteboard.ChangeCount()
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

func (m *DarwinMonitor) Stop() error {
	close(m.stopChan)
	return nil
}

func (m *DarwinMonitor) OnChange(handler func(types.Entry)) {
	m.mutex.Lock()
	m.handler = handler
	m.mutex.Unlock()
}

// SetContent writes the entry back to the general pasteboard.
func (m *DarwinMonitor) SetContent(entry types.Entry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.pasteboard.ClearContents()
	switch entry.Type {
	case types.TypeText:
		m.pasteboard.SetStringForType(entry.Content, appkit.PasteboardType("public.utf8-plain-text"))
	case types.TypeImage:
		data := entry.Data
		if len(data) == 0 && entry.FilePath != "" {
			read, err := os.ReadFile(entry.FilePath)
			if err != nil {
				return fmt.Errorf("failed to read image sidecar: %w", err)
			}
			data = read
		}
		m.pasteboard.SetDataForType(data, appkit.PasteboardType("public.png"))
	case types.TypeFile:
		m.pasteboard.SetStringForType("file://"+entry.Content, appkit.PasteboardType("public.file-url"))
	default:
		return fmt.Errorf("unsupported content type: %s", entry.Type)
	}

	// Writing bumps the change count; remember it so the poll loop does not
	// report our own write as a new entry.
	m.changeCount = m.pasteboard.ChangeCount()
	return nil
}

func (m *DarwinMonitor) checkForChanges() {
	m.mutex.Lock()
	currentCount := m.pasteboard.ChangeCount()
	changed := currentCount != m.changeCount
	m.changeCount = currentCount
	m.mutex.Unlock()

	if !changed {
		return
	}

	entry, ok := m.readPasteboard()
	if !ok {
		return
	}

	m.mutex.RLock()
	handler := m.handler
	m.mutex.RUnlock()

	if handler != nil {
		handler(entry)
	}
}

// readPasteboard classifies the current pasteboard content, preferring text
// over images over file URLs.
func (m *DarwinMonitor) readPasteboard() (types.Entry, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if text := m.pasteboard.StringForType(appkit.PasteboardType("public.utf8-plain-text")); text != "" {
		return types.NewEntry(types.TypeText, text, nil), true
	}

	if data := m.pasteboard.DataForType(appkit.PasteboardType("public.png")); len(data) > 0 {
		return types.NewEntry(types.TypeImage, "Image", data), true
	}

	if fileURL := m.pasteboard.StringForType(appkit.PasteboardType("public.file-url")); fileURL != "" {
		path := fileURLToPath(fileURL)
		entry := types.NewEntry(types.TypeFile, path, nil)
		if data, err := os.ReadFile(path); err == nil {
			entry.Data = data
		} else {
			slog.Debug("could not read copied file, keeping path only", "path", path, "error", err)
		}
		return entry, true
	}

	return types.Entry{}, false
}

func fileURLToPath(fileURL string) string {
	if u, err := url.Parse(fileURL); err == nil && u.Scheme == "file" {
		return u.Path
	}
	return strings.TrimPrefix(fileURL, "file://")
}
