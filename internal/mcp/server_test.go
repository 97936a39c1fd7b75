package mcp

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/pkg/config"
	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/stretchr/testify/assert"
)

func TestServe_RequiresDependencies(t *testing.T) {
	ctx := context.Background()

	err := Serve(ctx, nil, &cli.App{}, "test", nil)
	assert.EqualError(t, err, "config is required")

	err = Serve(ctx, &config.Config{}, nil, "test", nil)
	assert.EqualError(t, err, "CLI app is required")
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(&cli.App{}, "test", nil))
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{
		{Key: "method", Value: "tools/call"},
		{Key: "duration_ms", Value: 12},
	})
	assert.Equal(t, []any{"method", "tools/call", "duration_ms", 12}, args)
}
