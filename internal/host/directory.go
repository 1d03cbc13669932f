// Package host talks to the display host: it registers the plugin's actions,
// tracks which action instances are currently visible, and pushes titles to
// them over the host's websocket protocol.
package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Guliveer/vitalis/deck/internal/models"
)

var (
	// ErrDuplicateAction is returned when an action is registered twice.
	ErrDuplicateAction = errors.New("action already registered")

	// ErrInstanceGone is returned when pushing to an instance that is no
	// longer visible.
	ErrInstanceGone = errors.New("instance no longer visible")
)

// Instance is a display surface showing one action.
type Instance interface {
	// Context returns the host-assigned identifier of this instance.
	Context() string

	// SetTitle replaces the text shown on the instance.
	SetTitle(ctx context.Context, text models.DisplayText) error
}

// Directory indexes visible instances by action identifier.
// It is safe for concurrent use by the host reader and the broadcast loop.
type Directory struct {
	mu      sync.RWMutex
	actions map[string]map[string]Instance
}

// NewDirectory creates an empty directory with no registered actions.
func NewDirectory() *Directory {
	return &Directory{
		actions: make(map[string]map[string]Instance),
	}
}

// Register declares an action so that its instances are tracked.
func (d *Directory) Register(actionID string) error {
	if actionID == "" {
		return errors.New("action identifier is empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.actions[actionID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAction, actionID)
	}
	d.actions[actionID] = make(map[string]Instance)
	return nil
}

// Appear marks inst visible under actionID. It returns false, and records
// nothing, when the action is not registered.
func (d *Directory) Appear(actionID string, inst Instance) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	instances, ok := d.actions[actionID]
	if !ok {
		return false
	}
	instances[inst.Context()] = inst
	return true
}

// Disappear removes the instance with the given context ID from actionID.
func (d *Directory) Disappear(actionID, contextID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if instances, ok := d.actions[actionID]; ok {
		delete(instances, contextID)
	}
}

// Visible reports whether the instance is currently visible.
func (d *Directory) Visible(actionID, contextID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.actions[actionID][contextID]
	return ok
}

// VisibleInstances returns a snapshot of the visible instances of actionID,
// ordered by context. Unknown actions yield an empty slice.
func (d *Directory) VisibleInstances(actionID string) []Instance {
	d.mu.RLock()
	instances := d.actions[actionID]
	result := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		result = append(result, inst)
	}
	d.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Context() < result[j].Context()
	})
	return result
}

// Reset forgets all visible instances but keeps registrations. Used when the
// host connection is lost.
func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id := range d.actions {
		d.actions[id] = make(map[string]Instance)
	}
}
