// Package storage is the persistence adapter: a pass-through string
// key/value API over a Substrate. It never fails; substrate errors are
// logged and reads fall back to "".
package storage

import "log/slog"

// Adapter wraps a Substrate.
type Adapter struct {
	substrate Substrate
}

// NewAdapter returns an Adapter over substrate.
func NewAdapter(substrate Substrate) *Adapter {
	return &Adapter{substrate: substrate}
}

// Save writes value under key.
func (a *Adapter) Save(key, value string) {
	if err := a.substrate.SetItem(key, value); err != nil {
		slog.Warn("Failed to save to storage", "key", key, "error", err)
	}
}

// Load returns the value stored under key, or "" when absent.
func (a *Adapter) Load(key string) string {
	value, ok, err := a.substrate.GetItem(key)
	if err != nil {
		slog.Warn("Failed to load from storage", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return value
}

// Remove deletes the entry under key.
func (a *Adapter) Remove(key string) {
	if err := a.substrate.RemoveItem(key); err != nil {
		slog.Warn("Failed to remove from storage", "key", key, "error", err)
	}
}

// Clear deletes every entry.
func (a *Adapter) Clear() {
	if err := a.substrate.Clear(); err != nil {
		slog.Warn("Failed to clear storage", "error", err)
	}
}

// Keys lists the stored keys, or nil when the substrate cannot be read.
func (a *Adapter) Keys() []string {
	keys, err := a.substrate.Keys()
	if err != nil {
		slog.Warn("Failed to list storage keys", "error", err)
		return nil
	}
	return keys
}
