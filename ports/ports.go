// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/catalogctl/domain/appconfig"
	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/ingestion"
	"github.com/artpar/catalogctl/domain/journal"
	"github.com/artpar/catalogctl/domain/patch"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
	// After delivers the time once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Recorder observes scenario outcomes for metrics.
type Recorder interface {
	ObserveLifecycle(kind, op string, err error)
	ObserveStep(workflow, step string, err error)
}

// Hasher hashes and verifies secrets.
type Hasher interface {
	Hash(plaintext string) ([]byte, error)
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Catalog API Ports
// -----------------------------------------------------------------------------

// ErrNotFound matches errors for catalog objects that do not exist.
var ErrNotFound = errors.New("not found")

// Response is a raw successful response from the catalog API.
type Response struct {
	StatusCode int
	Body       []byte
}

// Document decodes the body as a JSON object.
func (r Response) Document() (catalog.Document, error) {
	return catalog.ParseDocument(r.Body)
}

// DeleteOptions controls service deletion.
type DeleteOptions struct {
	Recursive  bool
	HardDelete bool
}

// Catalog issues entity lifecycle calls against the catalog REST API.
// Every method returns an error for transport failures and non-2xx statuses.
type Catalog interface {
	// CreateService posts a service descriptor to the category's collection.
	CreateService(ctx context.Context, category catalog.Category, svc catalog.Service) (Response, error)

	// CreateEntity posts an entity descriptor to the kind's collection.
	CreateEntity(ctx context.Context, kind catalog.Kind, e catalog.Entity) (Response, error)

	// PatchEntity applies a JSON-Patch to the entity named fqn.
	PatchEntity(ctx context.Context, kind catalog.Kind, fqn string, ops patch.Patch) (Response, error)

	// DeleteService deletes the service named fqn.
	DeleteService(ctx context.Context, category catalog.Category, fqn string, opts DeleteOptions) (Response, error)

	// Search runs a search query.
	Search(ctx context.Context, query string) (Response, error)
}

// DocStore reads customization documents.
type DocStore interface {
	// GetDocument returns the document named fqn.
	GetDocument(ctx context.Context, fqn string) (catalog.Document, error)
}

// ConfigSource reads app-wide configuration.
type ConfigSource interface {
	// Limits returns the usage-limit configuration.
	Limits(ctx context.Context) (appconfig.Limits, error)

	// LineageSettings returns the lineage preferences.
	LineageSettings(ctx context.Context) (appconfig.LineageSettings, error)
}

// Pipelines triggers ingestion pipelines and reads their status.
type Pipelines interface {
	// TriggerPipeline starts a run of the pipeline with the given id.
	TriggerPipeline(ctx context.Context, id string) error

	// PipelineStatus returns the latest run status.
	PipelineStatus(ctx context.Context, id string) (ingestion.Status, error)
}

// -----------------------------------------------------------------------------
// Journal Ports
// -----------------------------------------------------------------------------

// Journal records the services scenarios create.
type Journal interface {
	// Record stores a newly created service.
	Record(ctx context.Context, e journal.Entry) error

	// MarkDeleted marks the service as deleted.
	MarkDeleted(ctx context.Context, serviceFQN string, at time.Time) error

	// Pending returns entries not yet deleted, oldest first.
	Pending(ctx context.Context) ([]journal.Entry, error)
}

// -----------------------------------------------------------------------------
// UI Ports
// -----------------------------------------------------------------------------

// Page drives a rendered catalog UI. Selectors are CSS selectors, or XPath
// expressions when they start with "/".
type Page interface {
	// Navigate loads url and waits for the document body.
	Navigate(ctx context.Context, url string) error

	// Fill replaces the value of the input matched by selector.
	Fill(ctx context.Context, selector, value string) error

	// Click clicks the element matched by selector once it is visible.
	Click(ctx context.Context, selector string) error

	// WaitVisible blocks until selector matches a visible element.
	WaitVisible(ctx context.Context, selector string) error

	// WaitHidden blocks until selector matches nothing visible.
	WaitHidden(ctx context.Context, selector string) error

	// Text returns the text content of the element matched by selector.
	Text(ctx context.Context, selector string) (string, error)

	// ExpectResponse starts listening for a network response whose URL
	// satisfies match. The returned function blocks until one arrives.
	ExpectResponse(ctx context.Context, match func(url string) bool) (wait func() error)
}
