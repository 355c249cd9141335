package app

import (
	"context"
	"time"

	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/ports"
	"github.com/rs/zerolog"
)

// ConfirmDeleteText is typed into the delete confirmation input.
const ConfirmDeleteText = "DELETE"

// UIConfig configures the UI workflows.
type UIConfig struct {
	StepTimeout time.Duration
	Logger      zerolog.Logger
	Metrics     ports.Recorder
}

// ServiceDeleter hard-deletes a service through the settings UI.
type ServiceDeleter struct {
	page  ports.Page
	steps steps
}

// NewServiceDeleter creates a deleter driving page.
func NewServiceDeleter(page ports.Page, cfg UIConfig) *ServiceDeleter {
	return &ServiceDeleter{
		page: page,
		steps: steps{
			workflow: "delete_service",
			timeout:  cfg.StepTimeout,
			logger:   cfg.Logger.With().Str("workflow", "delete_service").Logger(),
			metrics:  cfg.Metrics,
		},
	}
}

// DeleteService deletes the named service. The page must show the service
// list of category. Steps run in order and the first failure aborts with a
// *StepError.
func (d *ServiceDeleter) DeleteService(ctx context.Context, category catalog.Category, serviceName string) error {
	page := d.page

	run := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"search", func(ctx context.Context) error {
			wait := page.ExpectResponse(ctx, searchResponse(catalog.SearchTerm(serviceName)))
			if err := page.Fill(ctx, SelSearchBar, serviceName); err != nil {
				return err
			}
			return wait()
		}},
		{"open_service", func(ctx context.Context) error {
			if err := page.Click(ctx, SelServiceName(serviceName)); err != nil {
				return err
			}
			return expectText(ctx, page, SelEntityHeaderName, serviceName)
		}},
		{"open_delete_modal", func(ctx context.Context) error {
			if err := page.Click(ctx, SelManageButton); err != nil {
				return err
			}
			if err := page.WaitVisible(ctx, SelDeleteMenuItem); err != nil {
				return err
			}
			return page.Click(ctx, SelDeleteButtonTitle)
		}},
		{"choose_hard_delete", func(ctx context.Context) error {
			if err := page.Click(ctx, SelHardDeleteOption); err != nil {
				return err
			}
			return page.Click(ctx, SelHardDeleteTarget(serviceName))
		}},
		{"type_confirmation", func(ctx context.Context) error {
			return page.Fill(ctx, SelConfirmationInput, ConfirmDeleteText)
		}},
		{"confirm", func(ctx context.Context) error {
			wait := page.ExpectResponse(ctx, pathContains("/api/v1/services/"+category.FieldName()))
			if err := page.Click(ctx, SelConfirmButton); err != nil {
				return err
			}
			return wait()
		}},
		{"toast", func(ctx context.Context) error {
			return toast(ctx, page, DeletedToast(serviceName))
		}},
		{"wait_removed", func(ctx context.Context) error {
			return page.WaitHidden(ctx, SelServiceName(serviceName))
		}},
	}

	for _, step := range run {
		if err := d.steps.run(ctx, step.name, step.fn); err != nil {
			return err
		}
	}
	d.steps.logger.Info().Str("service", serviceName).Str("category", string(category)).Msg("service deleted through ui")
	return nil
}

// DeletedToast is the notification shown after a service is deleted.
func DeletedToast(serviceName string) string {
	return `"` + serviceName + `" deleted successfully!`
}
