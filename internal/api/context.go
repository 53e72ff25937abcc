package api

import (
	"context"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

type clientKey struct{}

// ClientFromContext returns the authenticated back-office client, or nil
// on public routes
func ClientFromContext(ctx context.Context) *models.ApiClient {
	c, _ := ctx.Value(clientKey{}).(*models.ApiClient)
	return c
}

// ContextWithClient attaches the authenticated client to ctx
func ContextWithClient(ctx context.Context, c *models.ApiClient) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// callerName names the caller in log lines
func callerName(ctx context.Context) string {
	if c := ClientFromContext(ctx); c != nil {
		return c.Name
	}
	return "anonymous"
}
