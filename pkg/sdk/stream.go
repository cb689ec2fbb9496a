package doorpilot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ChatStream reads events from a chat SSE response.
type ChatStream struct {
	resp    *http.Response
	scanner *bufio.Scanner
	done    bool
}

func newChatStream(resp *http.Response) *ChatStream {
	scanner := bufio.NewScanner(resp.Body)
	// Tokens are tiny but the final frame carries the full structured
	// response; give the scanner room for it.
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	return &ChatStream{resp: resp, scanner: scanner}
}

// streamFrame is the union wire shape of one SSE data payload.
type streamFrame struct {
	Token *string             `json:"token"`
	Final *StructuredResponse `json:"final"`
	Error *string             `json:"error"`
}

// Recv returns the next event. io.EOF signals a complete stream. A
// server-side failure mid-stream surfaces as a non-EOF error.
func (s *ChatStream) Recv() (ChatEvent, error) {
	if s.done {
		return ChatEvent{}, io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		if data == "[DONE]" {
			s.done = true
			return ChatEvent{}, io.EOF
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			return ChatEvent{}, fmt.Errorf("doorpilot: malformed stream frame: %w", err)
		}

		switch {
		case frame.Error != nil:
			s.done = true
			return ChatEvent{}, fmt.Errorf("doorpilot: stream error: %s", *frame.Error)
		case frame.Final != nil:
			return ChatEvent{Final: frame.Final}, nil
		case frame.Token != nil:
			return ChatEvent{Token: *frame.Token}, nil
		}
	}

	if err := s.scanner.Err(); err != nil {
		return ChatEvent{}, fmt.Errorf("doorpilot: read stream: %w", err)
	}
	// Connection closed without a terminal frame.
	s.done = true
	return ChatEvent{}, io.ErrUnexpectedEOF
}

// ConversationID returns the conversation identifier assigned by the
// server, available as soon as the stream is open.
func (s *ChatStream) ConversationID() string {
	return s.resp.Header.Get("X-Conversation-ID")
}

// Close releases the underlying connection.
func (s *ChatStream) Close() error {
	return s.resp.Body.Close()
}
