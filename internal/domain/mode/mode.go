// Package mode defines the retrieval modes of the chat pipeline.
package mode

import "fmt"

// Mode is the caller-facing retrieval mode.
type Mode string

const (
	// Auto resolves the retrieval target from the query text.
	Auto Mode = "auto"
	// Diagnose targets the playbook collection.
	Diagnose Mode = "diagnose"
	// Manual targets the manual collection.
	Manual Mode = "manual"
	// Parts targets the parts collection.
	Parts Mode = "parts"
)

// Parse validates a mode string. An empty string defaults to Auto.
func Parse(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return Auto, nil
	case Auto, Diagnose, Manual, Parts:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// RequiresAuth reports whether the mode is restricted to authenticated
// technicians.
func (m Mode) RequiresAuth() bool {
	return m == Diagnose || m == Manual
}
