// Package hotkey binds global keyboard shortcuts to control actions
package hotkey

import (
	"log/slog"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"

	apperrors "github.com/colortrig/colortrig/internal/errors"
)

// Binding couples a key combo with its action.
type Binding struct {
	Combo  []string
	Action func()
}

// ParseCombo splits a "ctrl+shift+f9" style spec into the key list the
// OS hook layer expects. Key names are lowercased and trimmed.
func ParseCombo(spec string) ([]string, error) {
	parts := strings.Split(spec, "+")
	combo := make([]string, 0, len(parts))
	for _, p := range parts {
		k := strings.ToLower(strings.TrimSpace(p))
		if k == "" {
			return nil, apperrors.Newf(apperrors.CodeHotkeyInvalid, "empty key in combo %q", spec)
		}
		combo = append(combo, k)
	}
	return combo, nil
}

// Listener owns the global keyboard hook. Bindings are registered
// before Start; callbacks run on the hook's event loop, so they must
// not block.
type Listener struct {
	log      *slog.Logger
	bindings []Binding

	mu      sync.Mutex
	started bool
}

// NewListener creates an empty listener.
func NewListener() *Listener {
	return &Listener{log: slog.Default().With("component", "hotkey")}
}

// Bind registers a combo spec with an action. Returns an error for a
// malformed spec; duplicate combos are allowed and all fire.
func (l *Listener) Bind(spec string, action func()) error {
	combo, err := ParseCombo(spec)
	if err != nil {
		return err
	}
	l.bindings = append(l.bindings, Binding{Combo: combo, Action: action})
	return nil
}

// Start installs the OS hook and dispatches events until Stop. It
// returns immediately; dispatch runs on its own goroutine.
func (l *Listener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.started = true

	for _, b := range l.bindings {
		action := b.Action
		combo := b.Combo
		hook.Register(hook.KeyDown, combo, func(e hook.Event) {
			l.log.Debug("hotkey fired", "combo", strings.Join(combo, "+"))
			action()
		})
	}

	events := hook.Start()
	go func() {
		<-hook.Process(events)
	}()
	l.log.Info("hotkey listener started", "bindings", len(l.bindings))
}

// Stop removes the OS hook.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		return
	}
	l.started = false
	hook.End()
	l.log.Info("hotkey listener stopped")
}
