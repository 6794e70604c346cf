package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"simulateur-hq/relay/pkg/providers"
)

// ErrStreamClosed is returned by writes after the terminal event or after a
// failed write.
var ErrStreamClosed = errors.New("relay: stream closed")

// doneEvent is the end marker every stream finishes with.
const doneEvent = "data: [DONE]\n\n"

// Wire shapes of the client-facing events.
type (
	deltaEvent struct {
		Choices []deltaChoice `json:"choices"`
	}
	deltaChoice struct {
		Delta deltaContent `json:"delta"`
	}
	deltaContent struct {
		Content string `json:"content"`
	}
	usageEvent struct {
		Usage usageTotal `json:"usage"`
	}
	usageTotal struct {
		TotalTokens int `json:"total_tokens"`
	}
	errorEvent struct {
		Error string `json:"error"`
	}
)

// Encoder writes fragments and the terminal event as SSE events. Each event
// is a single Write followed by a flush.
//
// An Encoder is used by one goroutine.
type Encoder struct {
	w      http.ResponseWriter
	rc     *http.ResponseController
	closed bool
	events int
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w http.ResponseWriter) *Encoder {
	return &Encoder{
		w:  w,
		rc: http.NewResponseController(w),
	}
}

// Open sends the streaming headers and flushes them so the client attaches
// before the first event.
func (e *Encoder) Open() error {
	h := e.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	e.w.WriteHeader(http.StatusOK)
	return e.flush()
}

// WriteFragment encodes and writes one fragment.
func (e *Encoder) WriteFragment(f providers.Fragment) error {
	if e.closed {
		return ErrStreamClosed
	}

	var payload []byte
	switch f.Kind {
	case providers.FragmentDelta:
		payload = marshal(deltaEvent{Choices: []deltaChoice{{Delta: deltaContent{Content: f.Text}}}})
	case providers.FragmentUsage:
		total := 0
		if f.Usage != nil {
			total = f.Usage.TotalTokens
		}
		payload = marshal(usageEvent{Usage: usageTotal{TotalTokens: total}})
	case providers.FragmentPayload:
		payload = []byte(f.Text)
	default:
		return fmt.Errorf("relay: unknown fragment kind %v", f.Kind)
	}

	return e.write(event(payload))
}

// Done writes the end marker and closes the encoder.
func (e *Encoder) Done() error {
	if e.closed {
		return ErrStreamClosed
	}
	err := e.write([]byte(doneEvent))
	e.closed = true
	return err
}

// Fail writes an error event followed by the end marker, in one write, and
// closes the encoder.
func (e *Encoder) Fail(message string) error {
	if e.closed {
		return ErrStreamClosed
	}
	buf := event(marshal(errorEvent{Error: message}))
	buf = append(buf, doneEvent...)
	err := e.write(buf)
	e.closed = true
	return err
}

// Closed reports whether a terminal event was written or a write failed.
func (e *Encoder) Closed() bool {
	return e.closed
}

// Events returns the number of events written successfully.
func (e *Encoder) Events() int {
	return e.events
}

func (e *Encoder) write(p []byte) error {
	if _, err := e.w.Write(p); err != nil {
		e.closed = true
		return err
	}
	if err := e.flush(); err != nil {
		e.closed = true
		return err
	}
	e.events++
	return nil
}

func (e *Encoder) flush() error {
	err := e.rc.Flush()
	if errors.Is(err, http.ErrNotSupported) {
		return nil
	}
	return err
}

// event frames a payload as a single SSE event.
func event(payload []byte) []byte {
	buf := make([]byte, 0, len(payload)+8)
	buf = append(buf, "data: "...)
	buf = append(buf, payload...)
	return append(buf, "\n\n"...)
}

// marshal encodes v without HTML escaping and without a trailing newline.
func marshal(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// The event types only hold strings and ints; Encode cannot fail.
	_ = enc.Encode(v)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
