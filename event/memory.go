package event

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// SliceReader replays a fixed list of events.
type SliceReader struct {
	events []Event
	pos    int
}

// NewSliceReader returns a Reader over events.
func NewSliceReader(events ...Event) *SliceReader {
	return &SliceReader{events: events}
}

// Next returns the next event, or io.EOF once the list is exhausted.
func (r *SliceReader) Next() (Event, error) {
	if r.pos >= len(r.events) {
		return Event{}, io.EOF
	}
	ev := r.events[r.pos]
	r.pos++
	return ev, nil
}

// Recorder is a Writer that keeps every event it receives.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit records ev.
func (r *Recorder) Emit(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = r.events[:0]
}

// Copy pumps events from r into w until StreamEnd has been written.
// It returns the number of events copied.
func Copy(w Writer, r Reader) (int, error) {
	n := 0
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return n, errors.Errorf("event: stream ended without %s", KindStreamEnd)
		}
		if err != nil {
			return n, err
		}
		if err := w.Emit(ev); err != nil {
			return n, err
		}
		n++
		if ev.Kind == KindStreamEnd {
			return n, nil
		}
	}
}
