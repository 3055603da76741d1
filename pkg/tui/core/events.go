package core

import (
	tea "charm.land/bubbletea/v2"
)

// ScrollDirection represents the direction of scrolling
type ScrollDirection int

const (
	ScrollUp ScrollDirection = iota
	ScrollDown
	ScrollPageUp
	ScrollPageDown
	ScrollToTop
	ScrollToBottom
)

// KeyScrollMap maps scroll keys to directions. Plain arrows and letters are
// left to the focused editor; scrolling uses modified or paging keys.
var KeyScrollMap = map[string]ScrollDirection{
	"ctrl+up":   ScrollUp,
	"ctrl+down": ScrollDown,
	"pgup":      ScrollPageUp,
	"pgdown":    ScrollPageDown,
	"home":      ScrollToTop,
	"end":       ScrollToBottom,
}

// GetScrollDirection returns the scroll direction for a key press, or false if not a scroll key
func GetScrollDirection(msg tea.KeyPressMsg) (ScrollDirection, bool) {
	dir, ok := KeyScrollMap[msg.String()]
	return dir, ok
}
