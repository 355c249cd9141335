package app_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/domain/catalog"
)

func deletablePage(name string) *fakePage {
	page := newFakePage()
	q := url.Values{"q": {catalog.SearchTerm(name)}}
	page.responses = []string{
		"http://catalog/api/v1/search/query?" + q.Encode(),
		"http://catalog/api/v1/services/searchServices/name/" + name + "?recursive=true&hardDelete=true",
	}
	page.texts[app.SelEntityHeaderName] = name
	page.texts[app.SelAlertMessage] = app.DeletedToast(name)
	return page
}

func TestServiceDeleter_Steps(t *testing.T) {
	name := "pw-search-service-1"
	page := deletablePage(name)

	d := app.NewServiceDeleter(page, app.UIConfig{Logger: zerolog.Nop()})
	if err := d.DeleteService(context.Background(), catalog.CategorySearch, name); err != nil {
		t.Fatalf("DeleteService failed: %v", err)
	}

	want := []string{
		"fill " + app.SelSearchBar + "=" + name,
		"click " + app.SelServiceName(name),
		"click " + app.SelManageButton,
		"click " + app.SelDeleteButtonTitle,
		"click " + app.SelHardDeleteOption,
		"click " + app.SelHardDeleteTarget(name),
		"fill " + app.SelConfirmationInput + "=DELETE",
		"click " + app.SelConfirmButton,
		"click " + app.SelAlertClose,
	}
	calls := page.Calls()
	var actions []string
	for _, c := range calls {
		if strings.HasPrefix(c, "fill ") || strings.HasPrefix(c, "click ") {
			actions = append(actions, c)
		}
	}
	if diff := cmp.Diff(want, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if last := calls[len(calls)-1]; last != "hidden "+app.SelServiceName(name) {
		t.Errorf("last call = %q, want wait for the row to disappear", last)
	}
}

func TestServiceDeleter_StepFailures(t *testing.T) {
	name := "svc-x"
	boom := errors.New("boom")
	tests := []struct {
		name     string
		setup    func(p *fakePage)
		wantStep string
	}{
		{"no search response", func(p *fakePage) { p.responses = p.responses[1:] }, "search"},
		{"wrong header", func(p *fakePage) { p.texts[app.SelEntityHeaderName] = "other" }, "open_service"},
		{"manage missing", func(p *fakePage) { p.fail[app.SelManageButton] = boom }, "open_delete_modal"},
		{"hard delete missing", func(p *fakePage) { p.fail[app.SelHardDeleteOption] = boom }, "choose_hard_delete"},
		{"confirmation input", func(p *fakePage) { p.fail[app.SelConfirmationInput] = boom }, "type_confirmation"},
		{"no delete response", func(p *fakePage) { p.responses = p.responses[:1] }, "confirm"},
		{"wrong toast", func(p *fakePage) { p.texts[app.SelAlertMessage] = "something else" }, "toast"},
		{"row stays", func(p *fakePage) { p.stuck[app.SelServiceName(name)] = true }, "wait_removed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := deletablePage(name)
			tt.setup(page)

			d := app.NewServiceDeleter(page, app.UIConfig{Logger: zerolog.Nop(), StepTimeout: time.Second})
			err := d.DeleteService(context.Background(), catalog.CategorySearch, name)

			var stepErr *app.StepError
			if !errors.As(err, &stepErr) {
				t.Fatalf("error %v is not *StepError", err)
			}
			if stepErr.Step != tt.wantStep || stepErr.Workflow != "delete_service" {
				t.Errorf("failed at %s/%s, want delete_service/%s", stepErr.Workflow, stepErr.Step, tt.wantStep)
			}
		})
	}
}

func TestServiceDeleter_StepTimeout(t *testing.T) {
	name := "svc-slow"
	page := deletablePage(name)
	page.absent[app.SelDeleteMenuItem] = true

	d := app.NewServiceDeleter(page, app.UIConfig{Logger: zerolog.Nop(), StepTimeout: 20 * time.Millisecond})
	err := d.DeleteService(context.Background(), catalog.CategorySearch, name)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want DeadlineExceeded", err)
	}
	var stepErr *app.StepError
	if errors.As(err, &stepErr) && stepErr.Step != "open_delete_modal" {
		t.Errorf("Step = %q, want open_delete_modal", stepErr.Step)
	}
}

func TestDeletedToast(t *testing.T) {
	if got, want := app.DeletedToast("svc"), `"svc" deleted successfully!`; got != want {
		t.Errorf("DeletedToast = %q, want %q", got, want)
	}
}
