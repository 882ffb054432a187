package workout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/myrjola/gymplan/internal/errors"
)

// SaveStatus describes the persistence state of a user's saved plan.
type SaveStatus struct {
	// Revision is the revision of the last successful save.
	Revision int64
	SavedAt  time.Time
	// Err is the failure of the latest save attempt or nil when it succeeded.
	Err error
	// Pending reports that a newer snapshot is waiting to be saved.
	Pending bool
}

// Persister saves published snapshots in the background.
//
// Only the newest pending snapshot of each user is kept and a single worker saves them one at a time, so there is
// at most one save in flight and the last published snapshot always wins. Users are served in the order their
// first pending snapshot arrived. Failed saves are logged and reported through Status without retry; the next
// change publishes a fresh snapshot.
type Persister struct {
	repo    PlanRepository
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[int]Event
	// order holds the users of pending in the order they were queued.
	order  []int
	status map[int]SaveStatus
	// unsaved holds the newest published snapshot of each user until a save of it, or of a newer one, succeeds.
	unsaved map[int]Event
	// inFlight is the user whose snapshot is being saved or 0.
	inFlight int
	// idle is closed when nothing is pending or being saved.
	idle chan struct{}
	busy bool
	// saved is closed and replaced after every save attempt.
	saved chan struct{}
	wake  chan struct{}
}

// NewPersister creates a persister saving to repo. Every save, and the final drain on shutdown, is bounded by
// timeout.
func NewPersister(repo PlanRepository, logger *slog.Logger, timeout time.Duration) *Persister {
	idle := make(chan struct{})
	close(idle)
	return &Persister{
		repo:    repo,
		logger:  logger,
		timeout: timeout,
		mu:      sync.Mutex{},
		pending:  make(map[int]Event),
		order:    nil,
		status:   make(map[int]SaveStatus),
		unsaved:  make(map[int]Event),
		inFlight: 0,
		idle:     idle,
		busy:     false,
		saved:    make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
}

// Publish queues event replacing any older pending snapshot of the same user. It never blocks.
func (p *Persister) Publish(event Event) {
	p.mu.Lock()
	if queued, ok := p.pending[event.UserID]; ok && queued.Revision > event.Revision {
		p.mu.Unlock()
		return
	}
	if _, ok := p.pending[event.UserID]; !ok {
		p.order = append(p.order, event.UserID)
	}
	p.pending[event.UserID] = event
	if latest, ok := p.unsaved[event.UserID]; !ok || latest.Revision <= event.Revision {
		p.unsaved[event.UserID] = event
	}
	status := p.status[event.UserID]
	status.Pending = true
	p.status[event.UserID] = status
	if !p.busy {
		p.busy = true
		p.idle = make(chan struct{})
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run saves pending snapshots until ctx is done. Snapshots still pending at that point are saved before returning.
// Cancelling ctx never aborts a save in flight.
func (p *Persister) Run(ctx context.Context) error {
	p.logger.LogAttrs(ctx, slog.LevelDebug, "starting plan persister")
	saveCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
		case <-p.wake:
		}
		if ctx.Err() != nil {
			drainCtx, cancel := context.WithTimeout(saveCtx, p.timeout)
			p.drain(drainCtx)
			cancel()
			p.logger.LogAttrs(saveCtx, slog.LevelDebug, "stopped plan persister")
			return nil
		}
		p.drain(saveCtx)
	}
}

// Flush waits until every snapshot published so far has been saved or has failed.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush persister: %w", ctx.Err())
	}
}

// FlushUser waits until no snapshot of userID is pending or being saved. Saves of other users are not waited for.
func (p *Persister) FlushUser(ctx context.Context, userID int) error {
	for {
		p.mu.Lock()
		_, queued := p.pending[userID]
		done := !queued && p.inFlight != userID
		saved := p.saved
		status := p.status[userID]
		p.mu.Unlock()
		if done {
			return status.Err
		}
		select {
		case <-saved:
		case <-ctx.Done():
			return fmt.Errorf("flush persister for user %d: %w", userID, ctx.Err())
		}
	}
}

// Unsaved returns the newest snapshot published for userID that is not known to be stored. It covers snapshots that
// are pending, being saved, or whose save failed.
func (p *Persister) Unsaved(userID int) (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	event, ok := p.unsaved[userID]
	return event, ok
}

// Status returns the persistence state of userID.
func (p *Persister) Status(userID int) SaveStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status[userID]
}

func (p *Persister) drain(ctx context.Context) {
	for {
		event, ok := p.next()
		if !ok {
			return
		}
		p.save(ctx, event)
	}
}

// next dequeues a pending event or marks the persister idle.
func (p *Persister) next() (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		if p.busy {
			p.busy = false
			close(p.idle)
		}
		return Event{}, false
	}
	userID := p.order[0]
	p.order = p.order[1:]
	event := p.pending[userID]
	delete(p.pending, userID)
	p.inFlight = userID
	return event, true
}

func (p *Persister) save(ctx context.Context, event Event) {
	saveCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err := p.repo.Save(saveCtx, event.UserID, event.Revision, event.Snapshot)

	p.mu.Lock()
	status := p.status[event.UserID]
	_, status.Pending = p.pending[event.UserID]
	if err != nil {
		status.Err = fmt.Errorf("save revision %d: %w: %w", event.Revision, ErrPersistence, err)
	} else {
		status.Err = nil
		status.Revision = event.Revision
		status.SavedAt = time.Now()
		if latest, ok := p.unsaved[event.UserID]; ok && latest.Revision <= event.Revision {
			delete(p.unsaved, event.UserID)
		}
	}
	p.status[event.UserID] = status
	p.inFlight = 0
	close(p.saved)
	p.saved = make(chan struct{})
	p.mu.Unlock()

	if err != nil {
		err = errors.Wrap(err, "save plan snapshot",
			slog.Int("userID", event.UserID), slog.Int64("revision", event.Revision))
		p.logger.LogAttrs(ctx, slog.LevelError, "plan not saved", errors.SlogError(err))
		return
	}
	p.logger.LogAttrs(ctx, slog.LevelDebug, "plan saved",
		slog.Int("userID", event.UserID), slog.Int64("revision", event.Revision))
}
