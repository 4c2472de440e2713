package i18n

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultLocale is used when a lookup names an unknown locale.
const DefaultLocale = "en"

// Catalog is an in-memory Translator keyed by locale then message key. It is
// safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	fallback string
	messages map[string]map[string]string
}

// NewCatalog creates an empty catalog that falls back to fallback when a
// locale or key is missing.
func NewCatalog(fallback string) *Catalog {
	fallback = normalizeLocale(fallback)
	if fallback == "" {
		fallback = DefaultLocale
	}
	return &Catalog{
		fallback: fallback,
		messages: make(map[string]map[string]string),
	}
}

// Add merges messages into locale, overriding existing keys.
func (c *Catalog) Add(locale string, messages map[string]string) {
	locale = normalizeLocale(locale)
	if locale == "" || len(messages) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.messages[locale]
	if !ok {
		bucket = make(map[string]string, len(messages))
		c.messages[locale] = bucket
	}
	for key, msg := range messages {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		bucket[key] = msg
	}
}

// Merge copies every locale of other into c.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil || other == c {
		return
	}
	other.mu.RLock()
	snapshot := make(map[string]map[string]string, len(other.messages))
	for locale, bucket := range other.messages {
		copied := make(map[string]string, len(bucket))
		for k, v := range bucket {
			copied[k] = v
		}
		snapshot[locale] = copied
	}
	other.mu.RUnlock()

	for locale, bucket := range snapshot {
		c.Add(locale, bucket)
	}
}

// Locales lists the locales with at least one message.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Has reports whether locale has any messages.
func (c *Catalog) Has(locale string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.messages[normalizeLocale(locale)]
	return ok
}

// Translate implements Translator.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	if c == nil {
		return "", ErrMissingTranslator
	}
	key = strings.TrimSpace(key)

	c.mu.RLock()
	msg, ok := c.lookup(normalizeLocale(locale), key)
	if !ok {
		msg, ok = c.lookup(c.fallback, key)
	}
	c.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrMissingKey, locale, key)
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...), nil
	}
	return msg, nil
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	bucket, ok := c.messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := bucket[key]
	return msg, ok
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	return strings.ReplaceAll(locale, "_", "-")
}
