package docbind

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

// Options is the per-call options bag. It is threaded into nested passes and
// handed to every hook. Include/Except filters apply to the top-level entity
// only.
type Options struct {
	include  []string
	except   []string
	values   map[string]any
	logger   *zap.Logger
	presence PresenceMap
	indent   int
}

// CallOption configures one top-level call.
type CallOption func(*Options)

// Include restricts the pass to the named properties. Names match the
// document name or the accessor.
func Include(names ...string) CallOption {
	return func(o *Options) { o.include = append(o.include, names...) }
}

// Except skips the named properties.
func Except(names ...string) CallOption {
	return func(o *Options) { o.except = append(o.except, names...) }
}

// WithValue stores a caller value that hooks can read through Call.Option.
func WithValue(key string, v any) CallOption {
	return func(o *Options) {
		if o.values == nil {
			o.values = map[string]any{}
		}
		o.values[key] = v
	}
}

// WithLogger sets the logger used for debug tracing of the pass.
func WithLogger(l *zap.Logger) CallOption {
	return func(o *Options) { o.logger = l }
}

// WithPresence collects presence flags for every property read.
func WithPresence(pm PresenceMap) CallOption {
	return func(o *Options) { o.presence = pm }
}

// WithIndent sets the indentation of rendered XML, YAML and JSON text.
// Zero renders JSON and XML compactly.
func WithIndent(n int) CallOption {
	return func(o *Options) { o.indent = n }
}

func buildOptions(opts []CallOption) (*Options, error) {
	o := &Options{}
	for _, fn := range opts {
		if fn != nil {
			fn(o)
		}
	}
	if len(o.include) > 0 && len(o.except) > 0 {
		return nil, configError("", "", "include and except are mutually exclusive")
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o, nil
}

// Value returns a caller value stored with WithValue.
func (o *Options) Value(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Logger returns the call logger, never nil.
func (o *Options) Logger() *zap.Logger {
	if o == nil || o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}

// nested returns the bag for nested passes: filters dropped, everything
// else shared.
func (o *Options) nested() *Options {
	if len(o.include) == 0 && len(o.except) == 0 {
		return o
	}
	cp := *o
	cp.include, cp.except = nil, nil
	return &cp
}

func (o *Options) selects(d *Definition) bool {
	match := func(names []string) bool {
		return slices.Contains(names, d.Name()) || slices.Contains(names, d.accessor)
	}
	if len(o.include) > 0 {
		return match(o.include)
	}
	if len(o.except) > 0 {
		return !match(o.except)
	}
	return true
}

// Call is handed to every hook.
type Call struct {
	Context     context.Context
	Exec        any // decorator or represented object
	Represented any
	Definition  *Definition
	Value       any // setter input
	Fragment    any // document fragment for Reader, Writer, Instance and Class hooks
	Index       int // collection item index, -1 outside collections
	Options     *Options
}

// Option returns a caller value stored with WithValue.
func (c Call) Option(key string) any {
	v, _ := c.Options.Value(key)
	return v
}

// Hook signatures.
type (
	GetterFunc   func(Call) (any, error)
	SetterFunc   func(Call) error
	ReaderFunc   func(Call) error
	WriterFunc   func(Call) error
	InstanceFunc func(Call) (any, error)
	ClassFunc    func(Call) (*Type, error)
	DefaultFunc  func(Call) (any, error)
)
