package service

import "oneclip/pkg/types"

// ChangeHandler is implemented by components that need to be notified of
// clipboard changes after they are persisted.
type ChangeHandler interface {
	HandleClipboardChange(entry types.Entry)
}
