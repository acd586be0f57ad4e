package resolve

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

// envPrefix is shared by every credential environment variable.
const envPrefix = "SM_"

// Source names the layer a value was taken from.
type Source string

const (
	SourceFlag   Source = "flag"
	SourceEnv    Source = "env"
	SourceConfig Source = "config"
)

// Value is a resolved field value together with its origin.
type Value struct {
	Field  Field
	Raw    string
	Source Source
}

// Int parses the value as a base 10 integer.
func (v Value) Int() (int64, error) {
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return 0, &InvalidValueError{Field: v.Field, Value: v.Raw, Source: v.Source, Err: err}
	}
	return n, nil
}

// Option configures a Resolver.
type Option func(*options)

type options struct {
	flags   map[string]string
	environ func() []string
	stored  koanf.Provider
}

// WithFlags sets the explicitly supplied command line values, keyed by Field.Key.
// Only flags the user actually set belong in the map.
func WithFlags(values map[string]string) Option {
	return func(o *options) {
		o.flags = values
	}
}

// WithEnviron sets the environment source, typically os.Environ.
func WithEnviron(environ func() []string) Option {
	return func(o *options) {
		o.environ = environ
	}
}

// WithStored sets the provider for values persisted in the credential config.
// The provider is read at most once and only when a lookup misses the flag and
// environment layers.
func WithStored(p koanf.Provider) Option {
	return func(o *options) {
		o.stored = p
	}
}

// Resolver looks up credential fields with the precedence
// command line flag → environment variable → stored config.
// Each field is resolved independently.
type Resolver struct {
	flags  *koanf.Koanf
	env    *koanf.Koanf
	stored func() (*koanf.Koanf, error)
}

// New creates a Resolver. Flag and environment layers are loaded immediately.
func New(opts ...Option) (*Resolver, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	r := &Resolver{
		flags: koanf.New("."),
		env:   koanf.New("."),
	}

	if len(o.flags) > 0 {
		values := make(map[string]any, len(o.flags))
		for key, value := range o.flags {
			if _, ok := FieldByKey(key); !ok {
				return nil, fmt.Errorf("unknown credential field %q", key)
			}
			values[key] = value
		}
		if err := r.flags.Load(confmap.Provider(values, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flag values: %w", err)
		}
	}

	if o.environ != nil {
		envProvider := env.Provider(".", env.Opt{
			Prefix: envPrefix,
			TransformFunc: func(key, value string) (string, any) {
				f, ok := FieldByEnv(key)
				if !ok {
					return "", nil
				}
				return f.Key, value
			},
			EnvironFunc: o.environ,
		})
		if err := r.env.Load(envProvider, nil); err != nil {
			return nil, fmt.Errorf("loading environment variables: %w", err)
		}
	}

	if o.stored != nil {
		r.stored = sync.OnceValues(func() (*koanf.Koanf, error) {
			k := koanf.New(".")
			if err := k.Load(o.stored, nil); err != nil {
				return nil, fmt.Errorf("loading stored credentials: %w", err)
			}
			return k, nil
		})
	}

	return r, nil
}

// Lookup returns the value of f from the highest-precedence layer that has it.
// The boolean is false when no layer supplies the field. An empty string that was
// explicitly supplied counts as present.
func (r *Resolver) Lookup(f Field) (Value, bool, error) {
	if r.flags.Exists(f.Key) {
		return Value{Field: f, Raw: r.flags.String(f.Key), Source: SourceFlag}, true, nil
	}
	if r.env.Exists(f.Key) {
		return Value{Field: f, Raw: r.env.String(f.Key), Source: SourceEnv}, true, nil
	}

	if r.stored == nil {
		return Value{}, false, nil
	}
	stored, err := r.stored()
	if err != nil {
		return Value{}, false, err
	}
	if stored.Exists(f.Key) {
		return Value{Field: f, Raw: stored.String(f.Key), Source: SourceConfig}, true, nil
	}

	return Value{}, false, nil
}

// Required is Lookup for a field that must be present. Returns a *MissingFieldError
// naming the field and its environment variable when no layer supplies it.
func (r *Resolver) Required(f Field) (Value, error) {
	v, ok, err := r.Lookup(f)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, &MissingFieldError{Field: f}
	}
	return v, nil
}
