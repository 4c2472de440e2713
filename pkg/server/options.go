package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/postgres"
	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/sink"
)

// GuardFunc authorises a request before it reaches a route. Returning an
// HTTPError selects the response status.
type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath      string
	DefaultLocale  string
	DefaultFormat  string
	Version        string
	ConnectTimeout time.Duration
	Guard          GuardFunc
	Logger         *zap.Logger

	Sinks      *sink.Registry
	Renderers  *render.Registry
	Translator i18n.Translator
	Checker    ConnectionChecker
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:      "/sinks",
		DefaultLocale:  i18n.DefaultLocale,
		DefaultFormat:  "json",
		Version:        "dev",
		ConnectTimeout: postgres.DefaultConnectTimeout,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/sinks"
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = i18n.DefaultLocale
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = "json"
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = postgres.DefaultConnectTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Checker == nil {
		opts.Checker = DefaultChecker
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithDefaultLocale(locale string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultLocale = locale
	}
}

func WithDefaultFormat(format string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultFormat = format
	}
}

func WithVersion(version string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Version = version
	}
}

func WithConnectTimeout(timeout time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ConnectTimeout = timeout
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithSinks sets the descriptor registry. The translator used for
// validation messages should be the one backing the registry.
func WithSinks(registry *sink.Registry, translator i18n.Translator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Sinks = registry
		o.Translator = translator
	}
}

func WithRenderers(renderers *render.Registry) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderers = renderers
	}
}

func WithChecker(checker ConnectionChecker) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Checker = checker
	}
}
