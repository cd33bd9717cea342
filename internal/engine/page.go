package engine

import "context"

// Page is the narrow driver surface the engine touches. Implementations wait
// for the target to become visible before acting; a wait timeout surfaces as
// an error and is fatal for the run. Keeping the surface this small lets the
// orchestrator and resolver run against an in-memory fake in tests.
type Page interface {
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	TextContent(ctx context.Context, selector string) (string, error)
}
