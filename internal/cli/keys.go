package cli

import (
	"bytes"

	"github.com/yaklabco/mdview/pkg/layout"
)

// pagerAction is what a key press asks the pager to do.
type pagerAction int

const (
	actionNone pagerAction = iota
	actionMove
	actionSelectAll
	actionClear
	actionYank
	actionReload
	actionQuit
)

// keyEvent is one decoded key press.
type keyEvent struct {
	action pagerAction
	key    layout.Key
	extend bool
}

// escapeKeys maps terminal escape sequences to navigation keys.
var escapeKeys = []struct {
	seq []byte
	key layout.Key
}{
	{[]byte("\x1b[A"), layout.KeyUp},
	{[]byte("\x1b[B"), layout.KeyDown},
	{[]byte("\x1b[5~"), layout.KeyPageUp},
	{[]byte("\x1b[6~"), layout.KeyPageDown},
	{[]byte("\x1b[H"), layout.KeyHome},
	{[]byte("\x1b[F"), layout.KeyEnd},
	{[]byte("\x1b[1~"), layout.KeyHome},
	{[]byte("\x1b[4~"), layout.KeyEnd},
	{[]byte("\x1bOA"), layout.KeyUp},
	{[]byte("\x1bOB"), layout.KeyDown},
}

// decodeKeys turns raw terminal input into key events. Unknown bytes and
// escape sequences are skipped.
func decodeKeys(buf []byte) []keyEvent {
	var events []keyEvent
	for len(buf) > 0 {
		if buf[0] == 0x1b {
			event, n := decodeEscape(buf)
			if event.action != actionNone {
				events = append(events, event)
			}
			buf = buf[n:]
			continue
		}

		if event, ok := decodeByte(buf[0]); ok {
			events = append(events, event)
		}
		buf = buf[1:]
	}
	return events
}

func decodeEscape(buf []byte) (keyEvent, int) {
	for _, esc := range escapeKeys {
		if bytes.HasPrefix(buf, esc.seq) {
			return keyEvent{action: actionMove, key: esc.key}, len(esc.seq)
		}
	}
	if len(buf) == 1 {
		return keyEvent{action: actionClear}, 1
	}
	// Unknown CSI sequence: skip to its final byte.
	if buf[1] == '[' {
		for i := 2; i < len(buf); i++ {
			if buf[i] >= 0x40 && buf[i] <= 0x7e {
				return keyEvent{}, i + 1
			}
		}
		return keyEvent{}, len(buf)
	}
	return keyEvent{action: actionClear}, 1
}

func decodeByte(b byte) (keyEvent, bool) {
	move := func(key layout.Key, extend bool) (keyEvent, bool) {
		return keyEvent{action: actionMove, key: key, extend: extend}, true
	}

	switch b {
	case 'j':
		return move(layout.KeyDown, false)
	case 'k':
		return move(layout.KeyUp, false)
	case 'J':
		return move(layout.KeyDown, true)
	case 'K':
		return move(layout.KeyUp, true)
	case ' ', 'f':
		return move(layout.KeyPageDown, false)
	case 'b':
		return move(layout.KeyPageUp, false)
	case 'g':
		return move(layout.KeyHome, false)
	case 'G':
		return move(layout.KeyEnd, false)
	case 'a':
		return keyEvent{action: actionSelectAll}, true
	case 'y':
		return keyEvent{action: actionYank}, true
	case 'r':
		return keyEvent{action: actionReload}, true
	case 'q', 0x03, 0x04:
		return keyEvent{action: actionQuit}, true
	default:
		return keyEvent{}, false
	}
}
