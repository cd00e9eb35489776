package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Event is the metadata reported for one reconciliation run.
type Event struct {
	Account     string    `json:"account"`
	Template    string    `json:"template,omitempty"`
	BankRecords int       `json:"bankRecords"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	At          time.Time `json:"at"`
}

type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, e Event) error

func (f RecorderFunc) Record(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Nop drops every event.
var Nop Recorder = RecorderFunc(func(context.Context, Event) error { return nil })

// DefaultBufferSize is how many events Async holds before dropping.
const DefaultBufferSize = 64

// AsyncRecorder delivers events from a bounded buffer on a single worker.
type AsyncRecorder struct {
	next    Recorder
	log     *logrus.Logger
	timeout time.Duration
	events  chan Event
	dropped atomic.Uint64
}

// Async returns a recorder that sends events in the background. Record never
// blocks the caller and never returns an error. When the buffer is full the
// event is dropped; delivery failures are logged at debug.
func Async(next Recorder, log *logrus.Logger) *AsyncRecorder {
	return AsyncWithBuffer(next, log, DefaultBufferSize)
}

func AsyncWithBuffer(next Recorder, log *logrus.Logger, size int) *AsyncRecorder {
	if next == nil {
		next = Nop
	}
	if size <= 0 {
		size = DefaultBufferSize
	}
	a := &AsyncRecorder{
		next:    next,
		log:     log,
		timeout: 5 * time.Second,
		events:  make(chan Event, size),
	}
	go a.run()
	return a
}

func (a *AsyncRecorder) Record(_ context.Context, e Event) error {
	select {
	case a.events <- e:
	default:
		a.dropped.Add(1)
		if a.log != nil {
			a.log.WithField("account", e.Account).Debug("telemetry buffer full, event dropped")
		}
	}
	return nil
}

// Dropped is the number of events discarded because the buffer was full.
func (a *AsyncRecorder) Dropped() uint64 {
	return a.dropped.Load()
}

func (a *AsyncRecorder) run() {
	for e := range a.events {
		a.deliver(e)
	}
}

func (a *AsyncRecorder) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.next.Record(ctx, e); err != nil && a.log != nil {
		a.log.WithError(err).WithField("account", e.Account).Debug("telemetry event dropped")
	}
}
