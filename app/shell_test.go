package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/domain/appconfig"
	"github.com/artpar/catalogctl/domain/catalog"
)

func TestShell_OnSession(t *testing.T) {
	src := &fakeConfigSource{
		limits:  appconfig.Limits{Enable: true, Banner: &appconfig.Banner{Header: "Limit reached", Type: "warning"}},
		lineage: appconfig.LineageSettings{UpstreamDepth: 2, DownstreamDepth: 3},
	}
	shell := app.NewShell(src, nil, zerolog.Nop())
	ctx := context.Background()

	shell.OnSession(ctx, appconfig.User{ID: "u1"})
	cfg := shell.Config()
	if !cfg.Limits.Enable {
		t.Error("limits not loaded")
	}
	if cfg.Preferences.Lineage == nil || cfg.Preferences.Lineage.DownstreamDepth != 3 {
		t.Errorf("lineage = %+v", cfg.Preferences.Lineage)
	}
	if l := shell.Layout(); !l.Banner || !l.ExtraBanner {
		t.Errorf("layout = %+v, want banner", l)
	}

	// same user: no refetch
	shell.OnSession(ctx, appconfig.User{ID: "u1"})
	// empty user: ignored
	shell.OnSession(ctx, appconfig.User{})
	if src.calls != 1 {
		t.Errorf("limits fetched %d times, want 1", src.calls)
	}

	shell.OnSession(ctx, appconfig.User{ID: "u2"})
	if src.calls != 2 {
		t.Errorf("limits fetched %d times, want 2", src.calls)
	}
}

func TestShell_ConfigIsCopy(t *testing.T) {
	src := &fakeConfigSource{limits: appconfig.Limits{Banner: &appconfig.Banner{Header: "h"}}}
	shell := app.NewShell(src, nil, zerolog.Nop())
	shell.OnSession(context.Background(), appconfig.User{ID: "u1"})

	cfg := shell.Config()
	cfg.Limits.Banner.Header = "changed"
	if got := shell.Config().Limits.Banner.Header; got != "h" {
		t.Errorf("banner header = %q, want h", got)
	}
}

func TestShell_FetchFailuresKeepPrevious(t *testing.T) {
	src := &fakeConfigSource{
		limits:  appconfig.Limits{Enable: true},
		lineage: appconfig.LineageSettings{UpstreamDepth: 1},
	}
	shell := app.NewShell(src, nil, zerolog.Nop())
	ctx := context.Background()
	shell.OnSession(ctx, appconfig.User{ID: "u1"})

	src.limitsErr = errors.New("down")
	src.lineageErr = errors.New("down")
	src.limits = appconfig.Limits{}
	shell.OnSession(ctx, appconfig.User{ID: "u2"})

	cfg := shell.Config()
	if !cfg.Limits.Enable || cfg.Preferences.Lineage == nil || cfg.Preferences.Lineage.UpstreamDepth != 1 {
		t.Errorf("config = %+v, want previous values kept", cfg)
	}
	if l := shell.Layout(); l.Banner {
		t.Error("banner shown without limits banner")
	}
}

func TestShell_LayoutRTL(t *testing.T) {
	shell := app.NewShell(&fakeConfigSource{}, nil, zerolog.Nop())
	shell.OnSession(context.Background(), appconfig.User{ID: "u1", Language: appconfig.RTLLanguage})
	if l := shell.Layout(); !l.RTL || l.SidebarWidth != appconfig.SidebarWidth {
		t.Errorf("layout = %+v", l)
	}
}

func TestShell_LoadsPersonaSidebar(t *testing.T) {
	src := &fakeConfigSource{docs: map[string]catalog.Document{
		"persona.p1": {"data": map[string]any{"navigation": []any{map[string]any{"id": "/explore"}}}},
	}}
	sidebar := app.NewSidebar(src, app.SidebarConfig{Logger: zerolog.Nop()})
	shell := app.NewShell(src, sidebar, zerolog.Nop())

	shell.OnSession(context.Background(), appconfig.User{ID: "u1", PersonaFQN: "p1"})
	items := shell.Sidebar().Items()
	if len(items) != 1 || items[0].Key != "/explore" {
		t.Errorf("items = %+v, want only explore", items)
	}
}
