package teleop

import (
	"context"
	"sync"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
)

// Worker states reported by WorkerStates.
const (
	WorkerPending = "pending"
	WorkerRunning = "running"
	WorkerStopped = "stopped"
	WorkerFailed  = "failed"
)

// WorkerFunc is one long-lived consumer loop. It returns nil on clean
// shutdown (context cancelled or input exhausted) and an error when its
// failure domain collapsed, typically a command transport failure.
type WorkerFunc func(ctx context.Context) error

type worker struct {
	name  string
	run   WorkerFunc
	state string
	err   error
}

// Hub wires producers and consumers together and owns their lifecycle:
// start every worker, run until Stop is requested, then wait for all of
// them to join. It owns no business data. A worker crash is recorded and
// logged but does not stop the other workers; restart policy belongs to
// the process supervisor, not here.
type Hub struct {
	logger customlog.Logger

	mu      sync.Mutex
	workers []*worker
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	errOnce  sync.Once
	firstErr error
}

// NewHub creates an empty hub.
func NewHub(logger customlog.Logger) *Hub {
	return &Hub{logger: logger}
}

// Register adds a named worker. Registration after Start is ignored.
func (h *Hub) Register(name string, run WorkerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		h.logger.Warnf("hub already running, ignoring late registration of worker '%s'", name)
		return
	}
	h.workers = append(h.workers, &worker{name: name, run: run, state: WorkerPending})
}

// Start launches all registered workers. The provided context is the
// session context; cancelling it (or calling Stop) asks every worker to
// stop cooperatively.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return
	}
	h.running = true

	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel

	h.logger.Infof("starting hub with %d workers", len(h.workers))

	for _, w := range h.workers {
		w.state = WorkerRunning
		h.wg.Add(1)
		go func(w *worker) {
			defer h.wg.Done()

			err := w.run(runCtx)

			h.mu.Lock()
			if err != nil {
				w.state = WorkerFailed
				w.err = err
			} else {
				w.state = WorkerStopped
			}
			h.mu.Unlock()

			if err != nil {
				h.logger.Errorf("worker '%s' failed: %v", w.name, err)
				h.errOnce.Do(func() { h.firstErr = err })
			} else {
				h.logger.Infof("worker '%s' stopped", w.name)
			}
		}(w)
	}
}

// Stop requests all workers to stop. It does not wait; call Wait.
func (h *Hub) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Wait blocks until every worker has joined and returns the first worker
// failure, if any. This is where transport failures become observable to
// the operator.
func (h *Hub) Wait() error {
	h.wg.Wait()

	h.mu.Lock()
	h.running = false
	h.mu.Unlock()

	return h.firstErr
}

// WorkerStates returns a snapshot of each worker's state by name.
func (h *Hub) WorkerStates() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()

	states := make(map[string]string, len(h.workers))
	for _, w := range h.workers {
		states[w.name] = w.state
	}
	return states
}
