package app

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/five82/roomperms/internal/config"
	"github.com/five82/roomperms/internal/editor"
	"github.com/five82/roomperms/internal/logger"
	"github.com/five82/roomperms/internal/matrix"
	"github.com/five82/roomperms/internal/permissions"
	"github.com/five82/roomperms/internal/prefs"
	"github.com/five82/roomperms/internal/ui"
)

// Options configure a roomperms run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/roomperms/prefs.toml
	Room       string // overrides the configured room
	Section    string // empty uses the last section from prefs
}

var (
	// ErrNoRoom is returned when neither the config nor the flags name a room.
	ErrNoRoom = errors.New("no room configured; set room in config or pass --room")

	// ErrTokenRejected is returned when the homeserver does not accept the
	// configured access token.
	ErrTokenRejected = errors.New("access token rejected; check access_token")
)

// session is a validated config with an opened room.
type session struct {
	cfg    config.Config
	room   *matrix.Room
	closer io.Closer
}

func (s *session) close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// Run boots the TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	s, err := open(ctx, opts, false)
	if err != nil {
		return err
	}
	defer s.close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Warn().Err(err).Msg("load prefs, using defaults")
	}
	section := userPrefs.Section()
	if strings.TrimSpace(opts.Section) != "" {
		if section, err = permissions.ParseSection(opts.Section); err != nil {
			return err
		}
	}

	log.Info().Str("room", s.room.ID()).Stringer("section", section).Msg("starting editor")
	return ui.Run(ui.Options{
		Context:      ctx,
		Room:         s.label(),
		Section:      section,
		NewPresenter: s.presenterFactory(ctx),
		ThemeName:    userPrefs.Theme,
		PrefsPath:    opts.PrefsPath,
	})
}

// open loads and validates the config, initialises logging and resolves
// the room. console routes logs to stderr for commands that do not own
// the terminal.
func open(ctx context.Context, opts Options, console bool) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if room := strings.TrimSpace(opts.Room); room != "" {
		cfg.Room = room
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Room == "" {
		return nil, ErrNoRoom
	}

	closer, err := logger.Init(logger.FromConfig(cfg.Log, console))
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	s := &session{cfg: cfg, closer: closer}

	client, err := matrix.NewClient(matrix.Options{
		HomeserverURL: cfg.HomeserverURL,
		AccessToken:   cfg.AccessToken,
		Timeout:       cfg.RequestTimeout,
	})
	if err != nil {
		s.close()
		return nil, errors.Wrap(err, "init matrix client")
	}

	user, err := client.WhoAmI(ctx)
	switch {
	case matrix.IsMatrixError(err, matrix.ErrCodeUnknownToken):
		log.Error().Err(err).Str("homeserver", cfg.HomeserverURL).Msg("access token rejected")
		s.close()
		return nil, errors.Wrap(ErrTokenRejected, cfg.HomeserverURL)
	case err != nil:
		s.close()
		return nil, errors.Wrapf(err, "reach homeserver %s", cfg.HomeserverURL)
	}
	log.Info().Str("user", user).Str("homeserver", cfg.HomeserverURL).Msg("authenticated")

	s.room, err = matrix.OpenRoom(ctx, client, cfg.Room)
	switch {
	case matrix.IsMatrixError(err, matrix.ErrCodeNotFound):
		s.close()
		return nil, errors.Wrapf(err, "room %s not found", cfg.Room)
	case err != nil:
		s.close()
		return nil, errors.Wrapf(err, "open room %s", cfg.Room)
	}
	return s, nil
}

// label names the room the way the user referred to it.
func (s *session) label() string {
	if s.cfg.Room != s.room.ID() {
		return s.cfg.Room + " (" + s.room.ID() + ")"
	}
	return s.room.ID()
}

// presenterFactory creates one presenter per section visit, each driven by
// its own activation loop.
func (s *session) presenterFactory(ctx context.Context) ui.PresenterFactory {
	return func(section permissions.Section) ui.Presenter {
		return newPresenter(ctx, section, s.room, s.cfg.RequestTimeout)
	}
}

// roomPresenter is a presenter whose activation loop may give up on it.
type roomPresenter struct {
	*editor.Presenter
	fetches *fetchRecorder
}

// Err returns the fetch error that closed the presenter, if it was closed.
func (p *roomPresenter) Err() error {
	select {
	case <-p.Done():
		return p.fetches.lastErr()
	default:
		return nil
	}
}

func newPresenter(ctx context.Context, section permissions.Section, room editor.Room, timeout time.Duration) *roomPresenter {
	fetches := &fetchRecorder{Room: room}
	p := editor.New(ctx, section, fetches, editor.WithCallTimeout(timeout))
	StartActivator(ctx, p, defaultRetryInterval, fetches.lastErr)
	return &roomPresenter{Presenter: p, fetches: fetches}
}
