package app_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/artpar/catalogctl/domain/appconfig"
	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/ingestion"
	"github.com/artpar/catalogctl/domain/journal"
	"github.com/artpar/catalogctl/domain/patch"
	"github.com/artpar/catalogctl/ports"
)

// fakePage implements ports.Page for testing. Every selector is visible
// unless listed in absent; absent selectors block WaitVisible until the
// context ends. Stuck selectors never become hidden.
type fakePage struct {
	mu        sync.Mutex
	calls     []string
	texts     map[string]string
	absent    map[string]bool
	stuck     map[string]bool
	fail      map[string]error // by selector
	responses []string
}

func newFakePage() *fakePage {
	return &fakePage{
		texts:  map[string]string{},
		absent: map[string]bool{},
		stuck:  map[string]bool{},
		fail:   map[string]error{},
	}
}

func (p *fakePage) record(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *fakePage) failure(selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fail[selector]
}

func (p *fakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.record("navigate %s", url)
	return nil
}

func (p *fakePage) Fill(ctx context.Context, selector, value string) error {
	p.record("fill %s=%s", selector, value)
	return p.failure(selector)
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.record("click %s", selector)
	return p.failure(selector)
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string) error {
	p.record("visible %s", selector)
	if err := p.failure(selector); err != nil {
		return err
	}
	p.mu.Lock()
	absent := p.absent[selector]
	p.mu.Unlock()
	if absent {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (p *fakePage) WaitHidden(ctx context.Context, selector string) error {
	p.record("hidden %s", selector)
	p.mu.Lock()
	stuck := p.stuck[selector]
	p.mu.Unlock()
	if stuck {
		return errors.New(selector + " still visible")
	}
	return nil
}

func (p *fakePage) Text(ctx context.Context, selector string) (string, error) {
	p.record("text %s", selector)
	if err := p.failure(selector); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.texts[selector], nil
}

func (p *fakePage) ExpectResponse(ctx context.Context, match func(url string) bool) func() error {
	return func() error {
		p.mu.Lock()
		defer p.mu.Unlock()
		for _, u := range p.responses {
			if match(u) {
				p.calls = append(p.calls, "response "+u)
				return nil
			}
		}
		return errors.New("no matching response")
	}
}

// callsWith returns the recorded calls starting with prefix.
func callsWith(calls []string, prefix string) []string {
	var out []string
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// fakeCatalog implements ports.Catalog for testing.
type fakeCatalog struct {
	mu        sync.Mutex
	createSvc error
	createEnt error
	deleteErr map[string]error // by service fqn
	deleted   []string
	patched   []string
	patchBody string
}

func (c *fakeCatalog) CreateService(ctx context.Context, category catalog.Category, svc catalog.Service) (ports.Response, error) {
	if c.createSvc != nil {
		return ports.Response{}, c.createSvc
	}
	body := fmt.Sprintf(`{"id":"s1","name":%q,"fullyQualifiedName":%q}`, svc.Name, svc.Name)
	return ports.Response{StatusCode: 201, Body: []byte(body)}, nil
}

func (c *fakeCatalog) CreateEntity(ctx context.Context, kind catalog.Kind, e catalog.Entity) (ports.Response, error) {
	if c.createEnt != nil {
		return ports.Response{}, c.createEnt
	}
	// the server normalizes the fqn, which may differ from the local one
	body := fmt.Sprintf(`{"id":"e1","name":%q,"fullyQualifiedName":"server.%s","description":"old"}`, e.Name, e.Name)
	return ports.Response{StatusCode: 201, Body: []byte(body)}, nil
}

func (c *fakeCatalog) PatchEntity(ctx context.Context, kind catalog.Kind, fqn string, ops patch.Patch) (ports.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patched = append(c.patched, fqn)
	body := c.patchBody
	if body == "" {
		body = fmt.Sprintf(`{"id":"e1","fullyQualifiedName":%q,"description":"new"}`, fqn)
	}
	return ports.Response{StatusCode: 200, Body: []byte(body)}, nil
}

func (c *fakeCatalog) DeleteService(ctx context.Context, category catalog.Category, fqn string, opts ports.DeleteOptions) (ports.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !opts.Recursive || !opts.HardDelete {
		return ports.Response{}, errors.New("expected recursive hard delete")
	}
	if err := c.deleteErr[fqn]; err != nil {
		return ports.Response{}, err
	}
	c.deleted = append(c.deleted, fqn)
	return ports.Response{StatusCode: 200, Body: []byte(`{"deleted":true}`)}, nil
}

func (c *fakeCatalog) Search(ctx context.Context, query string) (ports.Response, error) {
	return ports.Response{StatusCode: 200, Body: []byte(`{}`)}, nil
}

// fakeJournal implements ports.Journal for testing.
type fakeJournal struct {
	mu         sync.Mutex
	entries    []journal.Entry
	pendingErr error
	recordErr  error
}

func (j *fakeJournal) Record(ctx context.Context, e journal.Entry) error {
	if j.recordErr != nil {
		return j.recordErr
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	e.ID = int64(len(j.entries) + 1)
	j.entries = append(j.entries, e)
	return nil
}

func (j *fakeJournal) MarkDeleted(ctx context.Context, fqn string, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.entries {
		if j.entries[i].ServiceFQN == fqn && j.entries[i].DeletedAt == nil {
			t := at
			j.entries[i].DeletedAt = &t
		}
	}
	return nil
}

func (j *fakeJournal) Pending(ctx context.Context) ([]journal.Entry, error) {
	if j.pendingErr != nil {
		return nil, j.pendingErr
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []journal.Entry
	for _, e := range j.entries {
		if e.Pending() {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeConfigSource implements ports.ConfigSource and ports.DocStore.
type fakeConfigSource struct {
	mu         sync.Mutex
	limits     appconfig.Limits
	limitsErr  error
	lineage    appconfig.LineageSettings
	lineageErr error
	docs       map[string]catalog.Document
	calls      int
}

func (s *fakeConfigSource) Limits(ctx context.Context) (appconfig.Limits, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.limits, s.limitsErr
}

func (s *fakeConfigSource) LineageSettings(ctx context.Context) (appconfig.LineageSettings, error) {
	return s.lineage, s.lineageErr
}

func (s *fakeConfigSource) GetDocument(ctx context.Context, fqn string) (catalog.Document, error) {
	doc, ok := s.docs[fqn]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", fqn, ports.ErrNotFound)
	}
	return doc, nil
}

// fakePipelines implements ports.Pipelines with a scripted state sequence.
type fakePipelines struct {
	mu         sync.Mutex
	triggerErr error
	states     []ingestion.State // returned in order; the last one repeats
	reads      int
}

func (p *fakePipelines) TriggerPipeline(ctx context.Context, id string) error {
	return p.triggerErr
}

func (p *fakePipelines) PipelineStatus(ctx context.Context, id string) (ingestion.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := min(p.reads, len(p.states)-1)
	p.reads++
	return ingestion.Status{PipelineID: id, State: p.states[i]}, nil
}

// Ensure interface compliance.
var (
	_ ports.Page         = (*fakePage)(nil)
	_ ports.Catalog      = (*fakeCatalog)(nil)
	_ ports.Journal      = (*fakeJournal)(nil)
	_ ports.ConfigSource = (*fakeConfigSource)(nil)
	_ ports.DocStore     = (*fakeConfigSource)(nil)
	_ ports.Pipelines    = (*fakePipelines)(nil)
)
