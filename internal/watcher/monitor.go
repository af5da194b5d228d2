package watcher

import "oneclip/pkg/types"

// Monitor watches the system clipboard and reports new content.
type Monitor interface {
	Start() error
	Stop() error
	OnChange(handler func(types.Entry))
	SetContent(entry types.Entry) error
}
