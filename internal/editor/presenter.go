package editor

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/five82/roomperms/internal/asyncaction"
	"github.com/five82/roomperms/internal/permissions"
	"github.com/five82/roomperms/internal/state"
)

// ErrIllegalState is the failure reported for a save with nothing loaded.
var ErrIllegalState = errors.New("editor: save requested before permissions were loaded")

// Room is the backend holding the permissions being edited.
type Room interface {
	// FetchPermissions returns the current permissions. A nil set means no
	// data is available.
	FetchPermissions(ctx context.Context) (*permissions.Set, error)
	// UpdatePermissions persists set. It is called once per save.
	UpdatePermissions(ctx context.Context, set permissions.Set) error
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithLogger replaces the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Presenter) {
		p.log = logger
	}
}

// WithCallTimeout bounds each call into the Room. Zero means no bound.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Presenter) {
		p.callTimeout = d
	}
}

// Presenter owns the editing state of one section for one activation of
// the screen.
type Presenter struct {
	room        Room
	log         zerolog.Logger
	callTimeout time.Duration

	store  *state.Store[State]
	tasks  conc.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	fetchDone chan struct{}
}

// New returns a presenter for section backed by room. Cancelling ctx has
// the same effect as Close.
func New(ctx context.Context, section permissions.Section, room Room, opts ...Option) *Presenter {
	p := &Presenter{
		room: room,
		log:  log.Logger,
		store: state.New(State{
			Section: section,
			Items:   section.Items(),
		}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With().Str("component", "editor").Stringer("section", section).Logger()
	p.ctx, p.cancel = context.WithCancel(ctx)
	return p
}

// State returns the current state.
func (p *Presenter) State() State {
	return p.store.Snapshot()
}

// Subscribe streams state changes. See state.Store.Subscribe.
func (p *Presenter) Subscribe(buffer int) (string, <-chan State) {
	return p.store.Subscribe(buffer)
}

// Unsubscribe stops the stream registered under id.
func (p *Presenter) Unsubscribe(id string) {
	p.store.Unsubscribe(id)
}

// Wait blocks until every launched fetch and save has applied its result.
func (p *Presenter) Wait() {
	p.tasks.Wait()
}

// Close cancels in-flight calls and closes subscriptions. Results that
// arrive afterwards are dropped.
func (p *Presenter) Close() {
	p.cancel()
	p.store.Close()
}

// Activate starts the initial fetch. It does nothing once a snapshot is
// loaded or while a fetch is running; after a fetch that produced no data
// it fetches again. It reports whether a fetch was started.
func (p *Presenter) Activate() bool {
	if p.ctx.Err() != nil || p.State().Loaded() {
		return false
	}

	p.mu.Lock()
	if p.fetchDone != nil {
		p.mu.Unlock()
		return false
	}
	done := make(chan struct{})
	p.fetchDone = done
	p.mu.Unlock()

	p.tasks.Go(func() {
		defer func() {
			p.mu.Lock()
			p.fetchDone = nil
			p.mu.Unlock()
			close(done)
		}()
		p.fetch()
	})
	return true
}

// AwaitFetch blocks until the running fetch, if any, has applied its
// result.
func (p *Presenter) AwaitFetch(ctx context.Context) error {
	p.mu.Lock()
	done := p.fetchDone
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the presenter is closed or its parent context ends.
func (p *Presenter) Done() <-chan struct{} {
	return p.ctx.Done()
}

func (p *Presenter) fetch() {

	result := asyncaction.Run(p.ctx, func(ctx context.Context) (*permissions.Set, error) {
		ctx, cancel := p.callContext(ctx)
		defer cancel()
		return p.room.FetchPermissions(ctx)
	})
	if p.ctx.Err() != nil {
		return
	}

	set, ok := result.Value()
	if !ok || set == nil {
		p.log.Warn().Err(result.Err()).Msg("no permissions available")
		return
	}

	snapshot := *set
	p.store.Update(func(s *State) bool {
		if s.Loaded() {
			return false
		}
		current, baseline := snapshot, snapshot
		s.CurrentPermissions = &current
		s.BaselinePermissions = &baseline
		return true
	})
	p.log.Debug().Msg("permissions loaded")
}

// Dispatch applies ev. Side effects run in the background and report back
// through the state.
func (p *Presenter) Dispatch(ev Event) {
	switch e := ev.(type) {
	case ChangeMinimumRoleForAction:
		p.setLevel(e.Key, e.Role.PowerLevel())
	case ChangeLevelForAction:
		p.setLevel(e.Key, e.Level)
	case Save:
		p.save()
	case Exit:
		p.exit()
	case ResetPendingActions:
		p.reset()
	default:
		p.log.Warn().Type("event", ev).Msg("unhandled event")
	}
}

func (p *Presenter) setLevel(key permissions.Key, level int) {
	p.store.Update(func(s *State) bool {
		if s.CurrentPermissions == nil || !key.Valid() {
			return false
		}
		next := s.CurrentPermissions.With(key, level)
		if next == *s.CurrentPermissions {
			return false
		}
		s.CurrentPermissions = &next
		return true
	})
}

func (p *Presenter) exit() {
	p.store.Update(func(s *State) bool {
		if !s.HasChanges() || s.ConfirmExitAction.IsConfirming() {
			s.ConfirmExitAction = asyncaction.Success(asyncaction.Unit{})
		} else {
			s.ConfirmExitAction = asyncaction.Confirming[asyncaction.Unit]()
		}
		return true
	})
}

func (p *Presenter) reset() {
	p.store.Update(func(s *State) bool {
		if s.SaveAction.IsUninitialized() && s.ConfirmExitAction.IsUninitialized() {
			return false
		}
		s.SaveAction = asyncaction.Uninitialized[asyncaction.Unit]()
		s.ConfirmExitAction = asyncaction.Uninitialized[asyncaction.Unit]()
		return true
	})
}

func (p *Presenter) save() {
	var (
		edited   permissions.Set
		launch   bool
		inFlight bool
	)
	p.store.Update(func(s *State) bool {
		if s.SaveAction.IsLoading() {
			inFlight = true
			return false
		}
		if s.CurrentPermissions == nil {
			s.SaveAction = asyncaction.Failure[asyncaction.Unit](errors.WithStack(ErrIllegalState))
			return true
		}
		edited = *s.CurrentPermissions
		launch = true
		s.SaveAction = asyncaction.Loading[asyncaction.Unit]()
		return true
	})

	switch {
	case inFlight:
		p.log.Debug().Msg("save already in flight, ignoring")
		return
	case !launch:
		p.log.Warn().Err(ErrIllegalState).Msg("save rejected")
		return
	}

	saveID := ulid.Make().String()
	p.log.Info().Str("save_id", saveID).Int("changes", len(p.State().Changes())).Msg("saving permissions")
	p.tasks.Go(func() {
		p.persist(saveID, edited)
	})
}

func (p *Presenter) persist(saveID string, edited permissions.Set) {
	result := asyncaction.Run(p.ctx, func(ctx context.Context) (asyncaction.Unit, error) {
		ctx, cancel := p.callContext(ctx)
		defer cancel()
		if err := p.room.UpdatePermissions(ctx, edited); err != nil {
			return asyncaction.Unit{}, errors.Wrap(err, "update room permissions")
		}
		return asyncaction.Unit{}, nil
	})

	logger := p.log.With().Str("save_id", saveID).Logger()
	if p.ctx.Err() != nil {
		logger.Debug().Msg("editor closed, dropping save result")
		return
	}

	p.store.Update(func(s *State) bool {
		if result.IsSuccess() {
			baseline := edited
			s.BaselinePermissions = &baseline
		}
		s.SaveAction = result
		return true
	})

	if err := result.Err(); err != nil {
		logger.Error().Stack().Err(err).Msg("save failed")
		return
	}
	logger.Info().Msg("permissions saved")
}

func (p *Presenter) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.callTimeout > 0 {
		return context.WithTimeout(ctx, p.callTimeout)
	}
	return context.WithCancel(ctx)
}
