// Package llm talks to an OpenAI-compatible completion endpoint and decodes
// schema-constrained JSON out of the reply.
package llm

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("llm",
	fx.Provide(
		fx.Annotate(NewClient, fx.As(new(Completer))),
	),
)

//go:generate mockgen -destination=llmmock/completer.go -package=llmmock . Completer

// Completer produces a structured completion. On success out holds the
// decoded, schema-checked result. Failures are errutil errors coded
// upstream_error, malformed_output or incomplete_output.
type Completer interface {
	Complete(ctx context.Context, req Request, out any) error
}

type Request struct {
	// Name identifies the schema to the provider, e.g. "daily_tasks".
	Name   string
	System string
	User   string
	Schema *Schema
}
