// Package compile resolves dbt-style template directives in model SQL:
// config(), this, ref(), source(), var(), target.*, env_var(), restricted
// {% if %} blocks and a small set of built-in macros.
//
// Compile errors are never fatal. Every malformed or unresolvable
// directive degrades to a best-guess value or an inline diagnostic so the
// output is always plain SQL.
package compile

import (
	"log/slog"
	"os"
	"time"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// Context is the immutable per-invocation view the compiler reads from.
// It is built once per run from a registry snapshot; compiling never
// mutates shared registry state, so concurrent runs can each hold their
// own Context.
type Context struct {
	// Models and Sources index the registry snapshot by name.
	Models  map[string]*core.Model
	Sources map[string]*core.Source

	// Vars backs var() lookups.
	Vars map[string]any
	// Target backs target.* lookups.
	Target *core.Target

	// DefaultDatabase and DefaultSchema are the fallback namespace for
	// unresolved refs and sources.
	DefaultDatabase string
	DefaultSchema   string

	// FullRefresh influences is_incremental().
	FullRefresh bool

	// InvocationID and RunStartedAt back the corresponding builtins.
	InvocationID string
	RunStartedAt time.Time

	// LookupEnv backs env_var(); defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	Logger *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Context) lookupEnv(name string) (string, bool) {
	if c.LookupEnv != nil {
		return c.LookupEnv(name)
	}
	return os.LookupEnv(name)
}

func (c *Context) target() *core.Target {
	if c.Target == nil {
		return core.DefaultTarget()
	}
	return c.Target
}
