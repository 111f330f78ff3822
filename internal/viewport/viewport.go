// Package viewport broadcasts terminal-wide UI state: the current viewport
// width and whether the menu is open. One State is created per session and
// handed to whatever needs it.
package viewport

import (
	"log/slog"

	"github.com/lepinkainen/reelbox/internal/observable"
)

// DefaultWidth is used until the first resize event arrives.
const DefaultWidth = 80

// State is the session's viewport broadcaster.
type State struct {
	width    *observable.Value[int]
	menuOpen *observable.Value[bool]
}

// New creates a State with the given initial width and the menu closed.
func New(initialWidth int) *State {
	return &State{
		width:    observable.New(initialWidth),
		menuOpen: observable.New(false),
	}
}

// SetWidth records a new width, publishes it and returns it.
func (s *State) SetWidth(width int) int {
	slog.Debug("Viewport width changed", "width", width)
	return s.width.Set(width)
}

// Width returns the current width.
func (s *State) Width() int {
	return s.width.Get()
}

// SubscribeWidth yields the current width immediately and then every update.
func (s *State) SubscribeWidth() *observable.Subscription[int] {
	return s.width.Subscribe()
}

// SetMenuOpen records the menu flag, publishes it and returns it.
func (s *State) SetMenuOpen(open bool) bool {
	return s.menuOpen.Set(open)
}

// MenuOpen returns the current menu flag.
func (s *State) MenuOpen() bool {
	return s.menuOpen.Get()
}

// SubscribeMenuOpen yields the current menu flag immediately and then every update.
func (s *State) SubscribeMenuOpen() *observable.Subscription[bool] {
	return s.menuOpen.Subscribe()
}

// Close ends every width and menu subscription.
func (s *State) Close() {
	s.width.Close()
	s.menuOpen.Close()
}
