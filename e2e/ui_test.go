package e2e_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/artpar/catalogctl/adapters/browser"
	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/domain/catalog"
)

const settingsPage = `<!doctype html>
<html><body>
<input data-testid="searchbar">
<div data-testid="service-name-e2esvc">e2esvc</div>
<h1 data-testid="entity-header-display-name" style="display:none">e2esvc</h1>
<button data-testid="manage-button" style="display:none">Manage</button>
<ul><li data-menu-id="rc-menu-delete-button" style="display:none"><span data-testid="delete-button-title">Delete</span></li></ul>
<div id="delete-modal" style="display:none">
  <div data-testid="hard-delete-option"><span>Permanently delete e2esvc</span></div>
  <input data-testid="confirmation-text-input">
  <button data-testid="confirm-button">Confirm</button>
</div>
<div data-testid="alert-bar" style="display:none">
  <span data-testid="alert-message"></span><span data-testid="alert-icon-close">x</span>
</div>
<button data-testid="test-connection-btn">Test Connection</button>
<div data-testid="test-connection-modal" style="display:none">
  <div class="ant-modal-title">Connection Status</div>
  <button id="modal-ok">OK</button>
</div>
<span data-testid="success-badge" style="display:none">ok</span>
<span data-testid="messag-text"></span>
<script>
const $ = (s) => document.querySelector(s);
const show = (s) => { $(s).style.display = ''; };
$('[data-testid="searchbar"]').addEventListener('input', (e) => {
  fetch('/api/v1/search/query?q=' + encodeURIComponent('*' + e.target.value + '*'));
});
$('[data-testid="service-name-e2esvc"]').addEventListener('click', () => {
  show('[data-testid="entity-header-display-name"]');
  show('[data-testid="manage-button"]');
});
$('[data-testid="manage-button"]').addEventListener('click', () => show('[data-menu-id*="delete-button"]'));
$('[data-testid="delete-button-title"]').addEventListener('click', () => show('#delete-modal'));
$('[data-testid="confirm-button"]').addEventListener('click', async () => {
  if ($('[data-testid="confirmation-text-input"]').value !== 'DELETE') return;
  await fetch('/api/v1/services/searchServices/name/e2esvc?hardDelete=true&recursive=true', {method: 'DELETE'});
  $('#delete-modal').style.display = 'none';
  $('[data-testid="alert-message"]').textContent = '"e2esvc" deleted successfully!';
  show('[data-testid="alert-bar"]');
  setTimeout(() => $('[data-testid="service-name-e2esvc"]').remove(), 200);
});
$('[data-testid="alert-icon-close"]').addEventListener('click', () => { $('[data-testid="alert-bar"]').style.display = 'none'; });
$('[data-testid="test-connection-btn"]').addEventListener('click', () => show('[data-testid="test-connection-modal"]'));
$('#modal-ok').addEventListener('click', () => {
  $('[data-testid="test-connection-modal"]').style.display = 'none';
  setTimeout(() => {
    $('[data-testid="messag-text"]').textContent = 'Connection test was successful.';
    show('[data-testid="success-badge"]');
  }, 300);
});
</script>
</body></html>`

// settingsServer serves the scripted settings page and records API calls.
type settingsServer struct {
	mu    sync.Mutex
	calls []string
}

func (s *settingsServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/settings/services/{category}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, settingsPage)
	})
	r.HandleFunc("/api/v1/*", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	})
	return r
}

func (s *settingsServer) saw(call string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c == call {
			return true
		}
	}
	return false
}

func chromePath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("browser test skipped in -short mode")
	}
	if p := os.Getenv("CATALOGCTL_UI_CHROME_PATH"); p != "" {
		return p
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome binary found")
	return ""
}

func launch(t *testing.T, baseURL string) *browser.Browser {
	t.Helper()
	b, err := browser.Launch(browser.Options{
		BaseURL:  baseURL,
		Headless: true,
		ExecPath: chromePath(t),
		Width:    1280,
		Height:   720,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("Launch error: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func TestUI_DeleteService(t *testing.T) {
	site := &settingsServer{}
	srv := httptest.NewServer(site.routes())
	defer srv.Close()

	b := launch(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page := b.Page()
	if err := page.Navigate(ctx, "/settings/services/search"); err != nil {
		t.Fatalf("Navigate error: %v", err)
	}

	deleter := app.NewServiceDeleter(page, app.UIConfig{StepTimeout: 10 * time.Second, Logger: zerolog.Nop()})
	if err := deleter.DeleteService(ctx, catalog.CategorySearch, "e2esvc"); err != nil {
		t.Fatalf("DeleteService error: %v", err)
	}
	if !site.saw("DELETE /api/v1/services/searchServices/name/e2esvc") {
		t.Errorf("delete request not sent; calls = %v", site.calls)
	}
}

func TestUI_DeleteServiceWrongName(t *testing.T) {
	site := &settingsServer{}
	srv := httptest.NewServer(site.routes())
	defer srv.Close()

	b := launch(t, srv.URL)
	ctx := context.Background()

	page := b.Page()
	if err := page.Navigate(ctx, "/settings/services/search"); err != nil {
		t.Fatalf("Navigate error: %v", err)
	}

	deleter := app.NewServiceDeleter(page, app.UIConfig{StepTimeout: 2 * time.Second, Logger: zerolog.Nop()})
	err := deleter.DeleteService(ctx, catalog.CategorySearch, "other")

	var stepErr *app.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("err = %v, want *app.StepError", err)
	}
	if stepErr.Step != "open_service" {
		t.Errorf("failed step = %s, want open_service", stepErr.Step)
	}
}

func TestUI_TestConnection(t *testing.T) {
	site := &settingsServer{}
	srv := httptest.NewServer(site.routes())
	defer srv.Close()

	b := launch(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page := b.Page()
	if err := page.Navigate(ctx, "/settings/services/databases"); err != nil {
		t.Fatalf("Navigate error: %v", err)
	}

	tester := app.NewConnectionTester(page, 10*time.Second, app.UIConfig{StepTimeout: 10 * time.Second, Logger: zerolog.Nop()})
	result, err := tester.Test(ctx)
	if err != nil {
		t.Fatalf("Test error: %v", err)
	}
	if result != app.ConnectionSucceeded {
		t.Errorf("result = %s, want %s", result, app.ConnectionSucceeded)
	}
	if strings.Contains(fmt.Sprint(site.calls), "DELETE") {
		t.Errorf("unexpected delete call: %v", site.calls)
	}
}
