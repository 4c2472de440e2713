package i18n

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingTranslator is reported when a lookup happens without a
	// translator configured.
	ErrMissingTranslator = errors.New("i18n: translator is not configured")
	// ErrMissingKey is reported when a catalog has no message for a key.
	ErrMissingKey = errors.New("i18n: missing translation")
)

// Translator resolves a message key for a locale. Args are applied with
// fmt.Sprintf semantics when present.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler decides the string used when a lookup fails.
type MissingTranslationHandler func(locale, key string, err error) string

// Func is the injected translation function descriptors receive.
type Func func(key string) string

// Identity returns keys unchanged. Useful in tests that assert on keys.
func Identity(key string) string { return key }

// BindOption configures Bind.
type BindOption func(*binding)

type binding struct {
	onMissing MissingTranslationHandler
}

// WithMissingHandler overrides the fallback used for unresolved keys.
func WithMissingHandler(handler MissingTranslationHandler) BindOption {
	return func(b *binding) {
		if handler != nil {
			b.onMissing = handler
		}
	}
}

// Bind narrows t to a single locale. Unresolved keys fall back to the key
// itself unless a handler is configured.
func Bind(t Translator, locale string, opts ...BindOption) Func {
	cfg := binding{onMissing: missingTranslationDefault}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	locale = strings.TrimSpace(locale)

	return func(key string) string {
		key = strings.TrimSpace(key)
		if key == "" {
			return ""
		}
		if t == nil {
			return cfg.onMissing(locale, key, ErrMissingTranslator)
		}
		msg, err := t.Translate(locale, key)
		if err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
		if err == nil {
			err = fmt.Errorf("%w: %s", ErrMissingKey, key)
		}
		return cfg.onMissing(locale, key, err)
	}
}

func missingTranslationDefault(_ string, key string, _ error) string {
	return key
}
