package cloud

import (
	"context"
	"log/slog"

	"github.com/heimdex/heimdex-editor/internal/syncbridge"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// Client is a remote persistence collaborator for one project.
type Client interface {
	syncbridge.Persister
	ProjectID() string
}

// StubClient is used when no cloud URL is configured. It accepts every call
// and only logs it.
type StubClient struct {
	projectID string
	logger    *slog.Logger
}

func NewStubClient(projectID string, logger *slog.Logger) *StubClient {
	return &StubClient{projectID: projectID, logger: logger}
}

func (c *StubClient) ProjectID() string {
	return c.projectID
}

func (c *StubClient) SetItemFields(_ context.Context, items []timeline.Item) error {
	c.logger.Debug("cloud stub: set item fields", "project_id", c.projectID, "count", len(items))
	return nil
}

func (c *StubClient) DeleteItems(_ context.Context, ids []string) error {
	c.logger.Debug("cloud stub: delete items", "project_id", c.projectID, "ids", ids)
	return nil
}

func (c *StubClient) Reorder(_ context.Context, orders []timeline.SegmentOrder) error {
	c.logger.Debug("cloud stub: reorder", "project_id", c.projectID, "count", len(orders))
	return nil
}

func (c *StubClient) SetTransitions(_ context.Context, ts []timeline.Transition) error {
	c.logger.Debug("cloud stub: set transitions", "project_id", c.projectID, "count", len(ts))
	return nil
}
