// Package input synthesizes keyboard actions
package input

import (
	"strings"

	"github.com/go-vgo/robotgo"

	apperrors "github.com/colortrig/colortrig/internal/errors"
)

// aliases maps common spellings to the names the OS layer expects.
var aliases = map[string]string{
	"escape":  "esc",
	"return":  "enter",
	"control": "ctrl",
	"windows": "cmd",
	"super":   "cmd",
}

// specialKeys is the set of accepted multi-character key names.
var specialKeys = map[string]struct{}{
	"space": {}, "enter": {}, "tab": {}, "esc": {}, "backspace": {},
	"delete": {}, "insert": {}, "home": {}, "end": {}, "pageup": {}, "pagedown": {},
	"up": {}, "down": {}, "left": {}, "right": {},
	"shift": {}, "ctrl": {}, "alt": {}, "cmd": {},
	"f1": {}, "f2": {}, "f3": {}, "f4": {}, "f5": {}, "f6": {},
	"f7": {}, "f8": {}, "f9": {}, "f10": {}, "f11": {}, "f12": {},
	"f13": {}, "f14": {}, "f15": {}, "f16": {}, "f17": {}, "f18": {},
	"f19": {}, "f20": {}, "f21": {}, "f22": {}, "f23": {}, "f24": {},
}

// Normalize lowercases a symbolic key name, resolves aliases and
// rejects names the sink cannot synthesize.
func Normalize(key string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := aliases[k]; ok {
		k = alias
	}
	if len(k) == 1 {
		return k, nil
	}
	if _, ok := specialKeys[k]; ok {
		return k, nil
	}
	return "", apperrors.Newf(apperrors.CodeActionUnknownKey, "unrecognized key %q", key)
}

// Keyboard is the OS-backed action sink.
type Keyboard struct{}

// NewKeyboard creates a keyboard sink.
func NewKeyboard() *Keyboard { return &Keyboard{} }

// Press taps the named key, synchronously.
func (k *Keyboard) Press(key string) error {
	name, err := Normalize(key)
	if err != nil {
		return err
	}
	if err := robotgo.KeyTap(name); err != nil {
		return apperrors.Wrapf(err, apperrors.CodeActionFailed, "key tap %q", name)
	}
	return nil
}
