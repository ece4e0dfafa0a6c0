package audit

import (
	"context"
	"log"
	"time"
)

// Appender is the write half of the sink.
type Appender interface {
	Append(ctx context.Context, e Entry) error
}

// Recorder decouples audit writes from the response path. Record never
// blocks the request handler: entries go through a buffered channel to a
// background worker, and a full buffer drops the entry with an
// operational log line rather than stalling the client.
type Recorder struct {
	sink         Appender
	hooks        []func(Entry)
	queue        chan Entry
	writeTimeout time.Duration
	done         chan struct{}
}

// NewRecorder builds a recorder with the given buffer size. Hooks run in
// the worker goroutine after a successful enqueue, regardless of whether
// the durable write succeeds; they feed the live stream and the optional
// Kafka mirror.
func NewRecorder(sink Appender, buffer int, hooks ...func(Entry)) *Recorder {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Recorder{
		sink:         sink,
		hooks:        hooks,
		queue:        make(chan Entry, buffer),
		writeTimeout: 5 * time.Second,
		done:         make(chan struct{}),
	}
}

// Record enqueues an entry for asynchronous persistence. Returns false
// when the entry was dropped because the buffer is full.
func (r *Recorder) Record(e Entry) bool {
	select {
	case r.queue <- e:
		return true
	default:
		log.Printf("audit: buffer full, dropping entry route=%s status=%d", e.Route, e.Status)
		return false
	}
}

// Run consumes the queue until ctx is canceled, then drains what is
// already buffered. Write failures are logged and swallowed; they must
// never affect an already-sent response.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case e := <-r.queue:
			r.persist(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-r.queue:
					r.persist(e)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has drained and returned.
func (r *Recorder) Done() <-chan struct{} { return r.done }

func (r *Recorder) persist(e Entry) {
	for _, hook := range r.hooks {
		hook(e)
	}
	if r.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()
	if err := r.sink.Append(ctx, e); err != nil {
		log.Printf("audit: write failed route=%s status=%d: %v", e.Route, e.Status, err)
	}
}
