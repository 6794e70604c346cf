package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"simulateur-hq/relay/pkg/providers"
)

// FragmentSource is a lazy, finite, non-restartable sequence of fragments.
//
// Next returns io.EOF once the sequence is exhausted. Any other error ends the
// sequence too; subsequent calls keep returning the same error.
type FragmentSource interface {
	Next(ctx context.Context) (providers.Fragment, error)
}

// doneMarker ends a line-framed stream wherever it appears in a payload.
const doneMarker = "[DONE]"

// readBufferSize is the size of a single upstream read.
const readBufferSize = 32 << 10

// NewDecoder returns the decoder matching the call's strategy.
func NewDecoder(call *providers.UpstreamCall) (FragmentSource, error) {
	switch call.Strategy {
	case providers.StrategyEvents:
		if call.Events == nil {
			return nil, fmt.Errorf("provider %q: event call without a stream reader", call.Provider)
		}
		return NewEventDecoder(call.Provider, call.Events), nil
	case providers.StrategyLines:
		if call.Body == nil {
			return nil, fmt.Errorf("provider %q: line call without a body", call.Provider)
		}
		return NewLineDecoder(call.Provider, call.Body), nil
	default:
		return nil, fmt.Errorf("provider %q: unknown decode strategy %v", call.Provider, call.Strategy)
	}
}

// EventDecoder turns completion events into delta fragments followed by a
// single usage fragment.
type EventDecoder struct {
	provider string
	events   providers.StreamReader
	usage    *providers.TokenUsage
	err      error
}

// NewEventDecoder creates a decoder over a provider's event reader.
func NewEventDecoder(provider string, events providers.StreamReader) *EventDecoder {
	return &EventDecoder{
		provider: provider,
		events:   events,
	}
}

// Next returns the next non-empty delta. Once the reader is exhausted it
// returns the usage fragment (zero tokens when the provider never reported
// usage) and io.EOF afterwards.
func (d *EventDecoder) Next(ctx context.Context) (providers.Fragment, error) {
	if d.err != nil {
		return providers.Fragment{}, d.err
	}

	for {
		chunk, err := d.events.Read(ctx)
		if errors.Is(err, io.EOF) {
			d.err = io.EOF
			return providers.UsageFragment(d.usage), nil
		}
		if err != nil {
			d.err = err
			return providers.Fragment{}, err
		}
		if chunk == nil {
			continue
		}

		if chunk.Usage != nil {
			d.usage = chunk.Usage
		}
		if chunk.Delta != "" {
			return providers.DeltaFragment(chunk.Delta), nil
		}
	}
}

// LineDecoder splits a raw byte stream into newline-framed payloads.
//
// Bytes are decoded as UTF-8 incrementally: an incomplete trailing sequence is
// held back until the next read. Lines may span reads. Blank lines are
// dropped, an optional "data:" prefix is stripped, and a payload containing
// [DONE] ends the stream. All payloads decoded before the marker in the same
// read are still returned.
type LineDecoder struct {
	provider string
	r        io.Reader
	buf      []byte

	// tail holds the bytes of an incomplete UTF-8 sequence
	tail []byte

	// partial holds decoded text after the last newline
	partial strings.Builder

	pending []providers.Fragment
	err     error
}

// NewLineDecoder creates a decoder over a raw response body.
func NewLineDecoder(provider string, r io.Reader) *LineDecoder {
	return &LineDecoder{
		provider: provider,
		r:        r,
		buf:      make([]byte, readBufferSize),
	}
}

// Next returns the next payload fragment, reading from upstream as needed.
func (d *LineDecoder) Next(ctx context.Context) (providers.Fragment, error) {
	for {
		if len(d.pending) > 0 {
			f := d.pending[0]
			d.pending = d.pending[1:]
			return f, nil
		}
		if d.err != nil {
			return providers.Fragment{}, d.err
		}
		if err := ctx.Err(); err != nil {
			d.err = err
			continue
		}

		n, err := d.r.Read(d.buf)
		if n > 0 {
			d.feed(d.buf[:n])
		}
		switch {
		case d.err != nil:
			// [DONE] seen; the rest of the body is ignored
		case errors.Is(err, io.EOF):
			d.finish()
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				d.err = ctxErr
			} else {
				d.err = &providers.StreamError{
					Provider: d.provider,
					Message:  "failed to read stream",
					Cause:    err,
				}
			}
		}
	}
}

// feed decodes p and queues every complete line.
func (d *LineDecoder) feed(p []byte) {
	data := p
	if len(d.tail) > 0 {
		data = append(d.tail, p...)
		d.tail = nil
	}

	if cut := incompleteTail(data); cut > 0 {
		d.tail = append([]byte(nil), data[len(data)-cut:]...)
		data = data[:len(data)-cut]
	}
	d.partial.WriteString(strings.ToValidUTF8(string(data), "\uFFFD"))

	text := d.partial.String()
	d.partial.Reset()
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			break
		}
		if d.line(text[:i]) {
			return
		}
		text = text[i+1:]
	}
	d.partial.WriteString(text)
}

// finish processes what is left once upstream reached EOF.
func (d *LineDecoder) finish() {
	if len(d.tail) > 0 {
		d.err = &providers.StreamError{
			Provider: d.provider,
			Message:  fmt.Sprintf("incomplete UTF-8 sequence of %d bytes at end of stream", len(d.tail)),
		}
		return
	}

	rest := d.partial.String()
	d.partial.Reset()
	if d.line(rest) {
		return
	}
	d.err = io.EOF
}

// line handles one line and reports whether it ended the stream.
func (d *LineDecoder) line(s string) bool {
	s = strings.TrimSuffix(s, "\r")
	if strings.TrimSpace(s) == "" {
		return false
	}

	payload := s
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		payload = strings.TrimLeftFunc(rest, unicode.IsSpace)
	}
	if payload == "" {
		return false
	}

	if strings.Contains(payload, doneMarker) {
		d.err = io.EOF
		return true
	}

	d.pending = append(d.pending, providers.PayloadFragment(payload))
	return false
}

// incompleteTail returns the length of a truncated multi-byte sequence at the
// end of p, or 0 when p ends on a codepoint boundary.
func incompleteTail(p []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(p); i++ {
		if !utf8.RuneStart(p[len(p)-i]) {
			continue
		}
		if utf8.FullRune(p[len(p)-i:]) {
			return 0
		}
		return i
	}
	return 0
}
