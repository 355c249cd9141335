// Package memory provides in-memory implementations for testing and for
// the stub catalog server.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/artpar/catalogctl/domain/appconfig"
	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/ingestion"
	"github.com/artpar/catalogctl/ports"
)

// Store errors. Callers map them to HTTP statuses.
var (
	ErrNotFound    = ports.ErrNotFound
	ErrConflict    = errors.New("already exists")
	ErrInvalid     = errors.New("invalid request")
	ErrHasChildren = errors.New("has children")
)

// Catalog is an in-memory catalog backend.
type Catalog struct {
	ids   ports.IDGenerator
	clock ports.Clock

	mu        sync.RWMutex
	services  map[string]storedService // by fqn
	entities  map[string]storedEntity  // by fqn
	docs      map[string]catalog.Document
	settings  map[string]any
	limits    appconfig.Limits
	pipelines map[string]*pipeline
}

type storedService struct {
	category catalog.Category
	doc      catalog.Document
}

type storedEntity struct {
	kind       catalog.Kind
	serviceFQN string
	doc        catalog.Document
}

type pipeline struct {
	serviceFQN string
	outcome    ingestion.State
	runPolls   int // status reads spent in the running state
	status     ingestion.Status
	polls      int
}

// NewCatalog creates an empty catalog.
func NewCatalog(ids ports.IDGenerator, clock ports.Clock) *Catalog {
	return &Catalog{
		ids:       ids,
		clock:     clock,
		services:  make(map[string]storedService),
		entities:  make(map[string]storedEntity),
		docs:      make(map[string]catalog.Document),
		settings:  make(map[string]any),
		pipelines: make(map[string]*pipeline),
	}
}

// -----------------------------------------------------------------------------
// Services
// -----------------------------------------------------------------------------

// CreateService stores a service and returns the server view of it.
func (c *Catalog) CreateService(category catalog.Category, body catalog.Document) (catalog.Document, error) {
	name := body.Name()
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fqn := catalog.QuoteName(name)
	if _, ok := c.services[fqn]; ok {
		return nil, fmt.Errorf("%w: service %s", ErrConflict, fqn)
	}

	doc := body.Clone()
	doc["id"] = c.ids.New()
	doc["fullyQualifiedName"] = fqn
	doc["href"] = category.CollectionPath() + "/" + doc.ID()
	doc["deleted"] = false
	c.stamp(doc, 0.1)

	c.services[fqn] = storedService{category: category, doc: doc}
	return doc.Clone(), nil
}

// GetService returns the service named fqn.
func (c *Catalog) GetService(category catalog.Category, fqn string) (catalog.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	svc, ok := c.services[fqn]
	if !ok || svc.category.Canonical() != category.Canonical() {
		return nil, fmt.Errorf("%w: service %s", ErrNotFound, fqn)
	}
	return svc.doc.Clone(), nil
}

// DeleteService removes the service. Without recursive it fails when the
// service still owns entities. A soft delete flags the resources instead of
// removing them.
func (c *Catalog) DeleteService(category catalog.Category, fqn string, opts ports.DeleteOptions) (catalog.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	svc, ok := c.services[fqn]
	if !ok || svc.category.Canonical() != category.Canonical() {
		return nil, fmt.Errorf("%w: service %s", ErrNotFound, fqn)
	}

	var children []string
	for efqn, e := range c.entities {
		if e.serviceFQN == fqn {
			children = append(children, efqn)
		}
	}
	if len(children) > 0 && !opts.Recursive {
		return nil, fmt.Errorf("%w: service %s owns %d entities", ErrHasChildren, fqn, len(children))
	}

	for _, efqn := range children {
		if opts.HardDelete {
			delete(c.entities, efqn)
			continue
		}
		c.entities[efqn].doc["deleted"] = true
	}
	for id, p := range c.pipelines {
		if p.serviceFQN == fqn && opts.HardDelete {
			delete(c.pipelines, id)
		}
	}

	out := svc.doc.Clone()
	if opts.HardDelete {
		delete(c.services, fqn)
	} else {
		svc.doc["deleted"] = true
		out["deleted"] = true
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Entities
// -----------------------------------------------------------------------------

// CreateEntity stores an entity under its service. The body carries the
// service fqn in "service"; the stored document replaces it with a reference.
// A missing description is stored empty so "/description" replaces apply.
func (c *Catalog) CreateEntity(kind catalog.Kind, body catalog.Document) (catalog.Document, error) {
	name := body.Name()
	serviceFQN := catalog.QuoteName(body.String("service"))
	if name == "" || serviceFQN == "" {
		return nil, fmt.Errorf("%w: name and service are required", ErrInvalid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	svc, ok := c.services[serviceFQN]
	if !ok {
		return nil, fmt.Errorf("%w: service %s", ErrNotFound, serviceFQN)
	}
	if svc.category.Canonical() != kind.Category() {
		return nil, fmt.Errorf("%w: %s cannot live under a %s service", ErrInvalid, kind, svc.category)
	}

	fqn := serviceFQN + "." + catalog.QuoteName(name)
	if _, ok := c.entities[fqn]; ok {
		return nil, fmt.Errorf("%w: %s %s", ErrConflict, kind.TypeName(), fqn)
	}

	doc := body.Clone()
	doc["id"] = c.ids.New()
	doc["fullyQualifiedName"] = fqn
	doc["href"] = kind.CollectionPath() + "/" + doc.ID()
	doc["deleted"] = false
	if _, ok := doc["description"]; !ok {
		doc["description"] = ""
	}
	doc["service"] = map[string]any{
		"id":                 svc.doc.ID(),
		"type":               svc.category.FieldName(),
		"name":               svc.doc.Name(),
		"fullyQualifiedName": serviceFQN,
	}
	if field := kind.ChildField(); field != "" {
		qualifyChildren(fqn, doc[field])
	}
	c.stamp(doc, 0.1)

	c.entities[fqn] = storedEntity{kind: kind, serviceFQN: serviceFQN, doc: doc}
	return doc.Clone(), nil
}

// GetEntity returns the entity named fqn.
func (c *Catalog) GetEntity(kind catalog.Kind, fqn string) (catalog.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entities[fqn]
	if !ok || e.kind != kind {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind.TypeName(), fqn)
	}
	return e.doc.Clone(), nil
}

// PatchEntity applies an RFC 6902 patch. Identity fields survive the patch
// unchanged and child fqns are recomputed.
func (c *Catalog) PatchEntity(kind catalog.Kind, fqn string, rawPatch []byte) (catalog.Document, error) {
	ops, err := jsonpatch.DecodePatch(rawPatch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entities[fqn]
	if !ok || e.kind != kind {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind.TypeName(), fqn)
	}

	original, err := json.Marshal(e.doc)
	if err != nil {
		return nil, err
	}
	patched, err := ops.Apply(original)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	doc, err := catalog.ParseDocument(patched)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	for _, key := range []string{"id", "fullyQualifiedName", "href", "service"} {
		doc[key] = e.doc[key]
	}
	if field := kind.ChildField(); field != "" {
		qualifyChildren(fqn, doc[field])
	}
	if !jsonpatch.Equal(original, mustJSON(doc)) {
		version, _ := e.doc["version"].(float64)
		c.stamp(doc, version+0.1)
	}

	e.doc = doc
	c.entities[fqn] = e
	return doc.Clone(), nil
}

// Search matches a "*term*" query against service and entity fqns. Reserved
// character escapes are removed before matching.
func (c *Catalog) Search(query string) catalog.Document {
	term := strings.ToLower(unescapeReserved(strings.Trim(query, "*")))

	c.mu.RLock()
	var matches []catalog.Document
	for fqn, svc := range c.services {
		if strings.Contains(strings.ToLower(fqn), term) {
			matches = append(matches, svc.doc.Clone())
		}
	}
	for fqn, e := range c.entities {
		if strings.Contains(strings.ToLower(fqn), term) {
			matches = append(matches, e.doc.Clone())
		}
	}
	c.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].FQN() < matches[j].FQN() })

	hits := make([]any, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, map[string]any{"_id": m.ID(), "_source": map[string]any(m)})
	}
	return catalog.Document{
		"hits": map[string]any{
			"total": map[string]any{"value": len(hits)},
			"hits":  hits,
		},
	}
}

// Counts returns the number of stored resources per type, for metrics.
func (c *Catalog) Counts() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := map[string]int{"service": len(c.services)}
	for _, k := range catalog.Kinds() {
		counts[k.TypeName()] = 0
	}
	for _, e := range c.entities {
		counts[e.kind.TypeName()]++
	}
	return counts
}

// -----------------------------------------------------------------------------
// Documents and settings
// -----------------------------------------------------------------------------

// PutDocument stores a docStore document under its fqn.
func (c *Catalog) PutDocument(doc catalog.Document) error {
	if doc.FQN() == "" {
		return fmt.Errorf("%w: fullyQualifiedName is required", ErrInvalid)
	}
	c.mu.Lock()
	c.docs[doc.FQN()] = doc.Clone()
	c.mu.Unlock()
	return nil
}

// GetDocument returns the docStore document named fqn.
func (c *Catalog) GetDocument(fqn string) (catalog.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[fqn]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, fqn)
	}
	return doc.Clone(), nil
}

// SetLimits replaces the limits configuration.
func (c *Catalog) SetLimits(l appconfig.Limits) {
	c.mu.Lock()
	c.limits = l
	c.mu.Unlock()
}

// Limits returns the limits configuration.
func (c *Catalog) Limits() appconfig.Limits {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limits
}

// SetSetting stores the value of a system setting.
func (c *Catalog) SetSetting(configType string, value any) {
	c.mu.Lock()
	c.settings[configType] = value
	c.mu.Unlock()
}

// Setting returns a system setting in its wire envelope.
func (c *Catalog) Setting(configType string) (catalog.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.settings[configType]
	if !ok {
		return nil, fmt.Errorf("%w: setting %s", ErrNotFound, configType)
	}
	return catalog.Document{"config_type": configType, "config_value": value}, nil
}

// -----------------------------------------------------------------------------
// Ingestion pipelines
// -----------------------------------------------------------------------------

// PutPipeline registers a pipeline. Each run stays running for runPolls
// status reads and then ends in outcome.
func (c *Catalog) PutPipeline(id, serviceFQN string, outcome ingestion.State, runPolls int) {
	c.mu.Lock()
	c.pipelines[id] = &pipeline{
		serviceFQN: serviceFQN,
		outcome:    outcome,
		runPolls:   runPolls,
		status:     ingestion.Status{PipelineID: id},
	}
	c.mu.Unlock()
}

// TriggerPipeline starts a new queued run.
func (c *Catalog) TriggerPipeline(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pipelines[id]
	if !ok {
		return fmt.Errorf("%w: pipeline %s", ErrNotFound, id)
	}
	p.polls = 0
	p.status = ingestion.Status{
		PipelineID: id,
		RunID:      c.ids.New(),
		State:      ingestion.StateQueued,
		StartDate:  c.clock.Now().UnixMilli(),
	}
	return nil
}

// PipelineStatus returns the current run and advances it one step.
func (c *Catalog) PipelineStatus(id string) (ingestion.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pipelines[id]
	if !ok {
		return ingestion.Status{}, fmt.Errorf("%w: pipeline %s", ErrNotFound, id)
	}
	current := p.status

	switch p.status.State {
	case ingestion.StateQueued:
		p.status.State = ingestion.StateRunning
	case ingestion.StateRunning:
		p.polls++
		if p.polls >= p.runPolls {
			p.status.State = p.outcome
			p.status.EndDate = c.clock.Now().UnixMilli()
		}
	}
	return current, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// stamp sets version and updatedAt. Caller must hold c.mu.
func (c *Catalog) stamp(doc catalog.Document, version float64) {
	doc["version"] = math.Round(version*10) / 10
	doc["updatedAt"] = c.clock.Now().UnixMilli()
}

// qualifyChildren sets fullyQualifiedName on every nested field of v.
func qualifyChildren(parent string, v any) {
	list, ok := v.([]any)
	if !ok {
		return
	}
	for _, item := range list {
		f, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := f["name"].(string)
		fqn := parent + "." + catalog.QuoteName(name)
		f["fullyQualifiedName"] = fqn
		if dt, ok := f["dataType"].(string); ok {
			if _, set := f["dataTypeDisplay"]; !set {
				f["dataTypeDisplay"] = strings.ToLower(dt)
			}
		}
		if _, ok := f["tags"]; !ok {
			f["tags"] = []any{}
		}
		qualifyChildren(fqn, f["children"])
	}
}

func unescapeReserved(term string) string {
	var b strings.Builder
	escaped := false
	for _, r := range term {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func mustJSON(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}
