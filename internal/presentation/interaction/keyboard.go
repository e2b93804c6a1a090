// Package interaction reads single keystrokes from the terminal.
package interaction

import (
	"errors"
	"os"
	"unicode/utf8"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not a TTY
var ErrNotTerminal = errors.New("stdin is not a terminal")

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	oldState *unix.Termios
	input    chan KeyEvent
	stop     chan struct{}
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyEnter
	KeyBackspace
)

// KeyCtrlC is delivered as a KeyChar event when the terminal passes it through
const KeyCtrlC rune = 3

// NewKeyboardReader switches stdin to raw mode and starts reading keys
func NewKeyboardReader() (*KeyboardReader, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, ErrNotTerminal
	}

	kr := &KeyboardReader{
		input: make(chan KeyEvent, 32),
		stop:  make(chan struct{}),
	}

	if err := kr.enableRawMode(); err != nil {
		return nil, err
	}

	go kr.readInput()

	return kr, nil
}

// readInput reads keyboard input in a goroutine
func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 64)

	for {
		select {
		case <-kr.stop:
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			continue
		}

		for _, event := range parseInput(buf[:n]) {
			select {
			case kr.input <- event:
			case <-kr.stop:
				return
			}
		}
	}
}

// parseInput turns one read into key events. Escape sequences (arrows,
// function keys) are swallowed; pasted text yields one event per rune.
func parseInput(buf []byte) []KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	if buf[0] == 27 {
		if len(buf) == 1 {
			return []KeyEvent{{Key: 27, Type: KeyEscape}}
		}
		return nil
	}

	var events []KeyEvent
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		buf = buf[size:]

		switch {
		case r == KeyCtrlC:
			events = append(events, KeyEvent{Key: r, Type: KeyChar})
		case r == '\r' || r == '\n':
			events = append(events, KeyEvent{Key: r, Type: KeyEnter})
		case r == 127 || r == 8:
			events = append(events, KeyEvent{Key: r, Type: KeyBackspace})
		case r == utf8.RuneError || r < 32:
			continue
		default:
			events = append(events, KeyEvent{Key: r, Type: KeyChar})
		}
	}
	return events
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores terminal
func (kr *KeyboardReader) Close() error {
	close(kr.stop)
	return kr.disableRawMode()
}
