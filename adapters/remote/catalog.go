package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/artpar/catalogctl/domain/appconfig"
	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/ingestion"
	"github.com/artpar/catalogctl/domain/patch"
	"github.com/artpar/catalogctl/ports"
)

// Catalog implements the catalog API ports over a Client.
type Catalog struct {
	client *Client
}

// NewCatalog wraps client.
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

// Client returns the underlying HTTP client.
func (c *Catalog) Client() *Client {
	return c.client
}

// warnUnknown flags categories that fall back to the database endpoints.
func (c *Catalog) warnUnknown(category catalog.Category) {
	if !category.IsKnown() {
		c.client.logger.Warn().
			Str("category", string(category)).
			Str("endpoint", category.Endpoint()).
			Msg("unknown service category, using the database default")
	}
}

// CreateService posts svc to the category's service collection.
func (c *Catalog) CreateService(ctx context.Context, category catalog.Category, svc catalog.Service) (ports.Response, error) {
	c.warnUnknown(category)
	return c.client.Send(ctx, Call{
		Op:     "create_service",
		Method: http.MethodPost,
		Path:   category.CollectionPath(),
		Body:   svc,
	})
}

// CreateEntity posts e to the kind's collection.
func (c *Catalog) CreateEntity(ctx context.Context, kind catalog.Kind, e catalog.Entity) (ports.Response, error) {
	e.Kind = kind
	return c.client.Send(ctx, Call{
		Op:     "create_entity",
		Method: http.MethodPost,
		Path:   kind.CollectionPath(),
		Body:   e,
	})
}

// PatchEntity sends ops as a JSON-Patch to the entity named fqn.
func (c *Catalog) PatchEntity(ctx context.Context, kind catalog.Kind, fqn string, ops patch.Patch) (ports.Response, error) {
	if err := ops.Validate(); err != nil {
		return ports.Response{}, fmt.Errorf("invalid patch: %w", err)
	}
	return c.client.Send(ctx, Call{
		Op:          "patch_entity",
		Method:      http.MethodPatch,
		Path:        kind.CollectionPath() + "/name/" + url.PathEscape(fqn),
		ContentType: patch.ContentType,
		Body:        ops,
	})
}

// DeleteService deletes the service named fqn. The fqn is path-escaped.
func (c *Catalog) DeleteService(ctx context.Context, category catalog.Category, fqn string, opts ports.DeleteOptions) (ports.Response, error) {
	c.warnUnknown(category)
	q := url.Values{}
	q.Set("recursive", strconv.FormatBool(opts.Recursive))
	q.Set("hardDelete", strconv.FormatBool(opts.HardDelete))
	return c.client.Send(ctx, Call{
		Op:     "delete_service",
		Method: http.MethodDelete,
		Path:   category.CollectionPath() + "/name/" + url.PathEscape(fqn),
		Query:  q,
	})
}

// Search runs query against the search endpoint.
func (c *Catalog) Search(ctx context.Context, query string) (ports.Response, error) {
	return c.client.Send(ctx, Call{
		Op:     "search",
		Method: http.MethodGet,
		Path:   "/api/v1/search/query",
		Query:  url.Values{"q": {query}},
	})
}

// GetDocument returns the customization document named fqn.
func (c *Catalog) GetDocument(ctx context.Context, fqn string) (catalog.Document, error) {
	resp, err := c.client.Send(ctx, Call{
		Op:     "get_document",
		Method: http.MethodGet,
		Path:   "/api/v1/docStore/name/" + url.PathEscape(fqn),
	})
	if err != nil {
		return nil, err
	}
	return resp.Document()
}

// Limits returns the usage-limit configuration.
func (c *Catalog) Limits(ctx context.Context) (appconfig.Limits, error) {
	var out appconfig.Limits
	err := c.getJSON(ctx, "get_limits", "/api/v1/limits/config", &out)
	return out, err
}

// LineageSettings returns the lineage preferences.
func (c *Catalog) LineageSettings(ctx context.Context) (appconfig.LineageSettings, error) {
	var wrapper struct {
		ConfigType  string                    `json:"config_type"`
		ConfigValue appconfig.LineageSettings `json:"config_value"`
	}
	err := c.getJSON(ctx, "get_settings", "/api/v1/system/settings/"+appconfig.SettingLineage, &wrapper)
	return wrapper.ConfigValue, err
}

// TriggerPipeline starts a run of the ingestion pipeline id.
func (c *Catalog) TriggerPipeline(ctx context.Context, id string) error {
	_, err := c.client.Send(ctx, Call{
		Op:     "trigger_pipeline",
		Method: http.MethodPost,
		Path:   "/api/v1/services/ingestionPipelines/trigger/" + url.PathEscape(id),
	})
	return err
}

// PipelineStatus returns the latest run status of pipeline id.
func (c *Catalog) PipelineStatus(ctx context.Context, id string) (ingestion.Status, error) {
	var body struct {
		ID               string           `json:"id"`
		PipelineStatuses ingestion.Status `json:"pipelineStatuses"`
	}
	if err := c.getJSON(ctx, "get_pipeline", "/api/v1/services/ingestionPipelines/"+url.PathEscape(id), &body); err != nil {
		return ingestion.Status{}, err
	}
	status := body.PipelineStatuses
	if status.PipelineID == "" {
		status.PipelineID = body.ID
	}
	return status, nil
}

func (c *Catalog) getJSON(ctx context.Context, op, path string, out any) error {
	resp, err := c.client.Send(ctx, Call{Op: op, Method: http.MethodGet, Path: path})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s: %w", op, err)
	}
	return nil
}

// Ensure interface compliance.
var (
	_ ports.Catalog      = (*Catalog)(nil)
	_ ports.DocStore     = (*Catalog)(nil)
	_ ports.ConfigSource = (*Catalog)(nil)
	_ ports.Pipelines    = (*Catalog)(nil)
)
