// Package app contains the catalog scenario services: the entity lifecycle
// page-object, UI workflows, the session shell and the journal sweeper.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/journal"
	"github.com/artpar/catalogctl/domain/patch"
	"github.com/artpar/catalogctl/ports"
	"github.com/rs/zerolog"
)

// ErrNotCreated is returned when an operation needs server state that only
// Create provides.
var ErrNotCreated = errors.New("entity not created")

// Created holds the raw create response bodies.
type Created struct {
	Service json.RawMessage
	Entity  json.RawMessage
}

// Snapshot is the last known server state of the service and entity.
type Snapshot struct {
	Service catalog.Document
	Entity  catalog.Document
}

// Deleted holds the delete response body and the entity state from before
// the delete.
type Deleted struct {
	Service json.RawMessage
	Entity  catalog.Document
}

// EntityObject drives one entity and its owning service through
// create, patch, visit and delete. Not safe for concurrent use.
type EntityObject struct {
	category catalog.Category
	kind     catalog.Kind
	service  catalog.Service
	entity   catalog.Entity

	serviceDoc catalog.Document
	entityDoc  catalog.Document

	journal    ports.Journal
	scenarioID string
	clock      ports.Clock
	logger     zerolog.Logger
	metrics    ports.Recorder
	steps      steps
}

// EntityOption configures an EntityObject.
type EntityOption func(*EntityObject)

// WithJournal records created services under scenarioID.
func WithJournal(j ports.Journal, scenarioID string) EntityOption {
	return func(e *EntityObject) {
		e.journal = j
		e.scenarioID = scenarioID
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) EntityOption {
	return func(e *EntityObject) { e.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m ports.Recorder) EntityOption {
	return func(e *EntityObject) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithClock sets the clock used for journal timestamps.
func WithClock(c ports.Clock) EntityOption {
	return func(e *EntityObject) { e.clock = c }
}

// NewEntityObject creates a page-object for entity owned by svc.
func NewEntityObject(category catalog.Category, kind catalog.Kind, svc catalog.Service, entity catalog.Entity, opts ...EntityOption) *EntityObject {
	entity.Kind = kind
	e := &EntityObject{
		category:   category,
		kind:       kind,
		service:    svc,
		entity:     entity,
		serviceDoc: catalog.Document{},
		entityDoc:  catalog.Document{},
		clock:      systemClock{},
		logger:     zerolog.Nop(),
		metrics:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("kind", string(kind)).Str("entity", entity.Name).Logger()
	e.steps = steps{workflow: "visit_entity", logger: e.logger, metrics: e.metrics}
	return e
}

// NewSearchIndex creates a search index page-object with generated names:
// pw-search-service-<id> owning pw-search-index-<id>.
func NewSearchIndex(ids ports.IDGenerator, opts ...EntityOption) *EntityObject {
	service := "pw-search-service-" + ids.New()
	index := "pw-search-index-" + ids.New()
	return NewEntityObject(
		catalog.CategorySearch,
		catalog.KindSearchIndex,
		catalog.SearchServiceFixture(service),
		catalog.SearchIndexFixture(service, index),
		opts...,
	)
}

// Service returns the service descriptor.
func (e *EntityObject) Service() catalog.Service {
	return e.service
}

// Entity returns the entity descriptor.
func (e *EntityObject) Entity() catalog.Entity {
	return e.entity
}

// Create posts the service, then the entity. A failure leaves any part
// already created on the server.
func (e *EntityObject) Create(ctx context.Context, client ports.Catalog) (Created, error) {
	svcResp, err := client.CreateService(ctx, e.category, e.service)
	if err != nil {
		e.metrics.ObserveLifecycle(string(e.kind), "create", err)
		return Created{}, fmt.Errorf("create service %s: %w", e.service.Name, err)
	}
	svcDoc, err := svcResp.Document()
	if err != nil {
		return Created{}, err
	}
	e.serviceDoc = svcDoc
	e.record(ctx, svcDoc.FQN())

	entResp, err := client.CreateEntity(ctx, e.kind, e.entity)
	if err != nil {
		e.metrics.ObserveLifecycle(string(e.kind), "create", err)
		return Created{Service: svcResp.Body}, fmt.Errorf("create %s %s: %w", e.kind.TypeName(), e.entity.Name, err)
	}
	entDoc, err := entResp.Document()
	if err != nil {
		return Created{Service: svcResp.Body}, err
	}
	e.entityDoc = entDoc

	e.metrics.ObserveLifecycle(string(e.kind), "create", nil)
	e.logger.Info().Str("fqn", entDoc.FQN()).Msg("entity created")
	return Created{Service: svcResp.Body, Entity: entResp.Body}, nil
}

// Get returns the last known server state. Both documents are empty before
// Create.
func (e *EntityObject) Get() Snapshot {
	return Snapshot{Service: e.serviceDoc, Entity: e.entityDoc}
}

// Patch applies ops to the entity named by the stored response fqn and
// stores the patched entity.
func (e *EntityObject) Patch(ctx context.Context, client ports.Catalog, ops patch.Patch) (catalog.Document, error) {
	fqn := e.entityDoc.FQN()
	if fqn == "" {
		return nil, ErrNotCreated
	}

	resp, err := client.PatchEntity(ctx, e.kind, fqn, ops)
	e.metrics.ObserveLifecycle(string(e.kind), "patch", err)
	if err != nil {
		return nil, fmt.Errorf("patch %s: %w", fqn, err)
	}
	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}
	e.entityDoc = doc
	e.logger.Debug().Str("fqn", fqn).Int("ops", len(ops)).Msg("entity patched")
	return doc, nil
}

// Delete hard-deletes the service recursively, using the stored response
// fqn. The returned entity is the last known state; it is not re-fetched.
func (e *EntityObject) Delete(ctx context.Context, client ports.Catalog) (Deleted, error) {
	fqn := e.serviceDoc.FQN()
	if fqn == "" {
		return Deleted{}, ErrNotCreated
	}

	resp, err := client.DeleteService(ctx, e.category, fqn, ports.DeleteOptions{Recursive: true, HardDelete: true})
	e.metrics.ObserveLifecycle(string(e.kind), "delete", err)
	if err != nil {
		return Deleted{}, fmt.Errorf("delete service %s: %w", fqn, err)
	}

	if e.journal != nil {
		if err := e.journal.MarkDeleted(ctx, fqn, e.clock.Now()); err != nil {
			e.logger.Warn().Err(err).Str("service", fqn).Msg("journal update failed")
		}
	}
	e.logger.Info().Str("service", fqn).Msg("service deleted")
	return Deleted{Service: resp.Body, Entity: e.entityDoc}, nil
}

// Visit opens the entity page through the global search.
func (e *EntityObject) Visit(ctx context.Context, page ports.Page) error {
	fqn := e.entityDoc.FQN()
	if fqn == "" {
		return ErrNotCreated
	}

	err := e.steps.run(ctx, "search", func(ctx context.Context) error {
		wait := page.ExpectResponse(ctx, searchResponse(catalog.SearchTerm(fqn)))
		if err := page.Fill(ctx, SelSearchBar, fqn); err != nil {
			return err
		}
		return wait()
	})
	if err != nil {
		return err
	}

	return e.steps.run(ctx, "open", func(ctx context.Context) error {
		if err := page.Click(ctx, SelSearchResult(e.service.Name, e.entity.Name)); err != nil {
			return err
		}
		return page.WaitVisible(ctx, SelEntityHeaderName)
	})
}

func (e *EntityObject) record(ctx context.Context, serviceFQN string) {
	if e.journal == nil {
		return
	}
	entry := journal.Entry{
		ScenarioID: e.scenarioID,
		Category:   e.category,
		ServiceFQN: serviceFQN,
		CreatedAt:  e.clock.Now(),
	}
	if err := e.journal.Record(ctx, entry); err != nil {
		e.logger.Warn().Err(err).Str("service", serviceFQN).Msg("journal record failed")
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveLifecycle(kind, op string, err error)  {}
func (nopRecorder) ObserveStep(workflow, step string, err error) {}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
