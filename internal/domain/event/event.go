// Package event defines the tagged event type carried by the chat stream.
// Success and failure travel in-band over the same channel; Done is always
// the last event of a well-formed stream.
package event

import "github.com/aas-cloud/doorpilot/internal/domain/response"

// Type discriminates stream events.
type Type string

const (
	// Token is a single completion token.
	Token Type = "token"
	// Final carries the structured response after the stream ends.
	Final Type = "final"
	// Error terminates the stream with a failure message.
	Error Type = "error"
	// Done is the terminal sentinel.
	Done Type = "done"
)

// Event is one element of the chat stream.
type Event struct {
	Type  Type
	Token string
	Final *response.Structured
	Err   string
}

// NewToken creates a token event.
func NewToken(token string) Event { return Event{Type: Token, Token: token} }

// NewFinal creates a final event.
func NewFinal(final *response.Structured) Event { return Event{Type: Final, Final: final} }

// NewError creates an error event.
func NewError(msg string) Event { return Event{Type: Error, Err: msg} }

// NewDone creates the terminal sentinel event.
func NewDone() Event { return Event{Type: Done} }
