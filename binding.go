package docbind

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/reoring/docbind/internal/access"
	"github.com/reoring/docbind/internal/convert"
)

type notFound struct{}

// fragmentNotFound is returned by strategies when the document has no entry
// for a property at all, as opposed to an entry holding nil.
var fragmentNotFound any = notFound{}

// strategy reads and writes one property against one document kind.
type strategy interface {
	read(b *binding, doc any) (any, error)
	write(b *binding, doc any, v any) error
}

// binding pairs a Definition with a live entity for one traversal step.
type binding struct {
	ctx         context.Context
	def         *Definition
	format      Format
	represented any
	exec        any
	opts        *Options
	path        string
	strategy    strategy
}

func newBinding(ctx context.Context, def *Definition, format Format, ent entity, opts *Options, parent string) (*binding, error) {
	b := &binding{
		ctx:         ctx,
		def:         def,
		format:      format,
		represented: ent.represented,
		exec:        ent.exec,
		opts:        opts,
		path:        parent + "/" + def.Name(),
	}
	s, err := strategyFor(def, format)
	if err != nil {
		return nil, configError(b.path, def.accessor, "%v", err)
	}
	b.strategy = s
	return b, nil
}

func strategyFor(d *Definition, f Format) (strategy, error) {
	switch f {
	case FormatHash:
		return hashStrategy(d)
	case FormatXML:
		return xmlStrategy(d)
	case FormatYAML:
		return yamlStrategy(d)
	}
	return nil, errors.New("unknown format " + f.String())
}

func (b *binding) log() *zap.Logger { return b.opts.Logger() }

func (b *binding) call() Call {
	return Call{
		Context:     b.ctx,
		Exec:        b.exec,
		Represented: b.represented,
		Definition:  b.def,
		Index:       -1,
		Options:     b.opts,
	}
}

// compileFragment writes the property value into doc.
func (b *binding) compileFragment(doc any) error {
	if b.def.writer != nil {
		c := b.call()
		c.Fragment = doc
		return b.def.writer(c)
	}
	v, err := b.get()
	if err != nil {
		return err
	}
	return b.writeFragment(doc, v)
}

func (b *binding) writeFragment(doc any, v any) error {
	if convert.IsNil(v) && b.def.hasDefault {
		dv, err := b.defaultValue()
		if err != nil {
			return err
		}
		v = dv
	}
	if b.skippable(v) {
		return nil
	}
	return b.strategy.write(b, doc, v)
}

func (b *binding) skippable(v any) bool {
	if b.def.omitEmpty && convert.IsEmpty(v) {
		return true
	}
	return convert.IsNil(v) && !b.def.renderNil
}

// uncompileFragment reads the property from doc and sets it on the entity.
func (b *binding) uncompileFragment(doc any) error {
	if b.def.reader != nil {
		c := b.call()
		c.Fragment = doc
		return b.def.reader(c)
	}
	v, err := b.strategy.read(b, doc)
	if err != nil {
		return err
	}
	if v == fragmentNotFound {
		if b.def.required {
			return Issues{issueAt(b.path, CodeRequired, b.def.accessor, "", nil)}
		}
		if !b.def.hasDefault {
			b.log().Debug("fragment not found", zap.String("path", b.path))
			return nil
		}
		if v, err = b.defaultValue(); err != nil {
			return err
		}
		if v, err = b.coerceDefault(v); err != nil {
			return err
		}
		b.opts.presence.mark(b.path, PresenceDefaultApplied)
		b.log().Debug("default applied", zap.String("path", b.path), zap.Any("value", v))
		return b.set(v)
	}
	b.opts.presence.mark(b.path, PresenceSeen)
	if v == nil {
		b.opts.presence.mark(b.path, PresenceWasNull)
	}
	return b.set(v)
}

func (b *binding) defaultValue() (any, error) {
	if b.def.defaultFunc != nil {
		return b.def.defaultFunc(b.call())
	}
	return b.def.defaultVal, nil
}

// coerceDefault runs a scalar default through the coercion hook like a
// document fragment.
func (b *binding) coerceDefault(v any) (any, error) {
	if b.def.coercer == nil || b.def.IsTyped() || convert.IsNil(v) {
		return v, nil
	}
	if b.def.collection {
		items, err := convert.Elements(v)
		if err != nil {
			return nil, typeError(b.path, b.def.accessor, err.Error(), err)
		}
		out := make([]any, len(items))
		for i, it := range items {
			if out[i], err = b.def.coercer.Decode(it); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	if b.def.hash {
		return v, nil
	}
	return b.def.coercer.Decode(v)
}

// get reads the property from the entity, through the Getter hook when one
// is declared.
func (b *binding) get() (any, error) {
	if b.def.getter != nil {
		return b.def.getter(b.call())
	}
	v, err := access.Get(b.represented, b.def.accessor)
	if err != nil {
		return nil, b.accessError(err)
	}
	return v, nil
}

// set stores the property on the entity, through the Setter hook when one
// is declared.
func (b *binding) set(v any) error {
	if b.def.setter != nil {
		c := b.call()
		c.Value = v
		return b.def.setter(c)
	}
	if err := access.Set(b.represented, b.def.accessor, v); err != nil {
		return b.accessError(err)
	}
	return nil
}

func (b *binding) accessError(err error) error {
	if errors.Is(err, access.ErrUnknownProperty) {
		return Issues{issueAt(b.path, CodeUnknownProperty, b.def.accessor, err.Error(), err)}
	}
	return typeError(b.path, b.def.accessor, err.Error(), err)
}

// decodeScalar runs a raw scalar fragment through the coercion hook.
// Coercion errors are returned unchanged.
func (b *binding) decodeScalar(raw any) (any, error) {
	if b.def.coercer == nil {
		return raw, nil
	}
	return b.def.coercer.Decode(raw)
}

// encodeScalar runs an entity value through the coercion hook.
func (b *binding) encodeScalar(v any) (any, error) {
	if b.def.coercer == nil {
		return v, nil
	}
	return b.def.coercer.Encode(v)
}
