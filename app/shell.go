package app

import (
	"context"
	"sync"

	"github.com/artpar/catalogctl/domain/appconfig"
	"github.com/artpar/catalogctl/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Shell is the app shell of one UI session. It loads the session
// configuration whenever the signed-in user changes.
type Shell struct {
	source  ports.ConfigSource
	sidebar *Sidebar
	logger  zerolog.Logger

	mu       sync.RWMutex
	userID   string
	language string
	cfg      appconfig.Config
}

// NewShell creates a shell reading configuration from source. sidebar may
// be nil.
func NewShell(source ports.ConfigSource, sidebar *Sidebar, logger zerolog.Logger) *Shell {
	return &Shell{
		source:  source,
		sidebar: sidebar,
		logger:  logger.With().Str("component", "shell").Logger(),
	}
}

// OnSession reloads configuration for user. It does nothing when the user
// id is empty or unchanged. Fetch failures leave the previous values.
func (s *Shell) OnSession(ctx context.Context, user appconfig.User) {
	s.mu.Lock()
	if user.ID == "" || user.ID == s.userID {
		s.mu.Unlock()
		return
	}
	s.userID = user.ID
	s.language = user.Language
	s.mu.Unlock()

	var (
		limits    appconfig.Limits
		limitsOK  bool
		lineage   appconfig.LineageSettings
		lineageOK bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := s.source.Limits(gctx)
		if err != nil {
			s.logger.Debug().Err(err).Msg("limits config unavailable")
			return nil
		}
		limits, limitsOK = l, true
		return nil
	})
	g.Go(func() error {
		l, err := s.source.LineageSettings(gctx)
		if err != nil {
			s.logger.Debug().Err(err).Msg("lineage settings unavailable")
			return nil
		}
		lineage, lineageOK = l, true
		return nil
	})
	if s.sidebar != nil {
		g.Go(func() error {
			s.sidebar.LoadPersona(gctx, user.PersonaFQN)
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if limitsOK {
		s.cfg.Limits = limits
	}
	if lineageOK {
		s.cfg.Preferences.Lineage = &lineage
	}
	s.logger.Debug().Str("user", user.ID).Bool("limits", limitsOK).Bool("lineage", lineageOK).Msg("session configured")
}

// Config returns a copy of the session configuration.
func (s *Shell) Config() appconfig.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Sidebar returns the session sidebar, or nil.
func (s *Shell) Sidebar() *Sidebar {
	return s.sidebar
}

// Layout describes the shell for the current configuration.
func (s *Shell) Layout() appconfig.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return appconfig.Compose(s.cfg, s.language)
}
