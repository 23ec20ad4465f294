package reactor

import "fmt"

// engineConfig holds the configuration shared by every engine constructor. All engines use the
// diagnostic sink; only ActionPipeline reads the overload flag.
type engineConfig struct {
	sink     DiagnosticSink
	overload bool
}

// Option configures an engine at construction time. Mirrors the teacher's GlobalOption
// convention: unexported function types implementing a small apply method, constructed via
// exported With* functions so the zero value of engineConfig is never spelled out by callers.
type Option interface {
	apply(*engineConfig)
}

type optionFunc func(*engineConfig)

func (o optionFunc) apply(c *engineConfig) { o(c) }

// WithDiagnosticSink overrides the default stderr-backed diagnostic sink. A nil sink is ignored:
// the engine keeps the sink it already has (the default, unless an earlier option replaced it).
// Every engine (TypedValueBag, StateTree, EventBus, ActionPipeline) accepts this
// option.
func WithDiagnosticSink(sink DiagnosticSink) Option {
	return optionFunc(func(c *engineConfig) {
		if sink != nil {
			c.sink = sink
		}
	})
}

// WithOverloadMode enables ActionPipeline overload mode: a key may carry multiple handler
// containers distinguished by (arity, Σ), rather than exactly one fixed-signature container.
// It has no effect on TypedValueBag, StateTree or EventBus.
func WithOverloadMode() Option {
	return optionFunc(func(c *engineConfig) {
		c.overload = true
	})
}

func newEngineConfig(tag string, opts ...Option) engineConfig {
	c := engineConfig{sink: defaultSink(tag)}
	for _, o := range opts {
		o.apply(&c)
	}
	return c
}

func (c *engineConfig) diagf(format string, args ...any) {
	if c.sink == nil {
		return
	}
	c.sink(fmt.Sprintf(format, args...))
}
