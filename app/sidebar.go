package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/artpar/catalogctl/domain/navigation"
	"github.com/artpar/catalogctl/ports"
	"github.com/rs/zerolog"
)

// PersonaDocPrefix prefixes the docStore name of a persona's customization.
const PersonaDocPrefix = "persona."

// ErrNoLogoutPending is returned by ConfirmLogout without a prior RequestLogout.
var ErrNoLogoutPending = errors.New("no logout pending")

// SidebarConfig configures a Sidebar.
type SidebarConfig struct {
	Static   []navigation.Item
	Nested   map[string]bool
	OnLogout func(ctx context.Context) error
	Logger   zerolog.Logger
}

// Sidebar holds the left navigation state for one session.
type Sidebar struct {
	docs     ports.DocStore
	static   []navigation.Item
	nested   map[string]bool
	onLogout func(ctx context.Context) error
	logger   zerolog.Logger

	mu            sync.Mutex
	persona       []navigation.Item
	collapsed     bool
	confirmLogout bool
}

// NewSidebar creates a collapsed sidebar. Empty config fields use the
// default navigation tree.
func NewSidebar(docs ports.DocStore, cfg SidebarConfig) *Sidebar {
	if cfg.Static == nil {
		cfg.Static = navigation.DefaultItems()
	}
	if cfg.Nested == nil {
		cfg.Nested = navigation.DefaultNestedKeys()
	}
	return &Sidebar{
		docs:      docs,
		static:    cfg.Static,
		nested:    cfg.Nested,
		onLogout:  cfg.OnLogout,
		logger:    cfg.Logger.With().Str("component", "sidebar").Logger(),
		collapsed: true,
	}
}

// LoadPersona fetches the navigation customization of personaFQN. Fetch
// failures keep the static tree.
func (s *Sidebar) LoadPersona(ctx context.Context, personaFQN string) {
	if personaFQN == "" || s.docs == nil {
		return
	}
	doc, err := s.docs.GetDocument(ctx, PersonaDocPrefix+personaFQN)
	if err != nil {
		s.logger.Debug().Err(err).Str("persona", personaFQN).Msg("persona document unavailable")
		return
	}
	items, err := personaNavigation(doc)
	if err != nil {
		s.logger.Debug().Err(err).Str("persona", personaFQN).Msg("persona navigation unreadable")
		return
	}

	s.mu.Lock()
	s.persona = items
	s.mu.Unlock()
}

// personaNavigation reads data.navigation from a persona document.
func personaNavigation(doc map[string]any) ([]navigation.Item, error) {
	data, ok := doc["data"].(map[string]any)
	if !ok {
		return nil, nil
	}
	raw, err := json.Marshal(data["navigation"])
	if err != nil {
		return nil, err
	}
	var items []navigation.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Items returns the upper menu tree.
func (s *Sidebar) Items() []navigation.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return navigation.Resolve(s.static, s.persona)
}

// LowerItems returns the settings and logout entries.
func (s *Sidebar) LowerItems() []navigation.Item {
	return navigation.LowerItems()
}

// SelectedKeys returns the menu keys selected for path.
func (s *Sidebar) SelectedKeys(path string) []string {
	return navigation.SelectedKeys(path, s.nested)
}

// MouseOver expands a collapsed sidebar.
func (s *Sidebar) MouseOver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collapsed {
		s.collapsed = false
	}
}

// MouseOut collapses the sidebar.
func (s *Sidebar) MouseOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collapsed = true
}

// Collapsed reports whether the sidebar is collapsed.
func (s *Sidebar) Collapsed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collapsed
}

// RequestLogout opens the logout confirmation.
func (s *Sidebar) RequestLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmLogout = true
}

// CancelLogout closes the logout confirmation.
func (s *Sidebar) CancelLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmLogout = false
}

// LogoutPending reports whether the logout confirmation is open.
func (s *Sidebar) LogoutPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmLogout
}

// ConfirmLogout closes the confirmation and calls the logout handler.
func (s *Sidebar) ConfirmLogout(ctx context.Context) error {
	s.mu.Lock()
	pending := s.confirmLogout
	s.confirmLogout = false
	s.mu.Unlock()

	if !pending {
		return ErrNoLogoutPending
	}
	if s.onLogout == nil {
		return nil
	}
	return s.onLogout(ctx)
}
