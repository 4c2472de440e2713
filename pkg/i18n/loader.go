package i18n

import (
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Locale   string         `json:"locale" yaml:"locale"`
	Messages map[string]any `json:"messages" yaml:"messages"`
}

// LoadFS walks fsys and parses every JSON/YAML catalog file into a Catalog.
// The locale comes from the file's `locale` key or, when absent, from the
// file name (cn.yaml -> cn). Nested message maps are flattened with dots.
// Messages are stripped of markup before they are stored.
func LoadFS(fsys fs.FS, fallback string) (*Catalog, error) {
	catalog := NewCatalog(fallback)
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", p, err)
		}
		doc, err := parseCatalog(data, p)
		if err != nil {
			return err
		}

		locale := strings.TrimSpace(doc.Locale)
		if locale == "" {
			base := path.Base(p)
			locale = strings.TrimSuffix(base, path.Ext(base))
		}

		messages := make(map[string]string)
		if err := flatten("", doc.Messages, messages); err != nil {
			return fmt.Errorf("i18n: file %s: %w", p, err)
		}
		for key, msg := range messages {
			messages[key] = sanitizeMessage(msg)
		}
		catalog.Add(locale, messages)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

func isCatalogFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func parseCatalog(data []byte, source string) (catalogFile, error) {
	var doc catalogFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return catalogFile{}, fmt.Errorf("i18n: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = catalogFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return catalogFile{}, fmt.Errorf("i18n: parse %s: invalid JSON or YAML", source)
}

func flatten(prefix string, in map[string]any, out map[string]string) error {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := in[key].(type) {
		case string:
			out[full] = v
		case map[string]any:
			if err := flatten(full, v, out); err != nil {
				return err
			}
		case nil:
			continue
		default:
			return fmt.Errorf("message %q must be a string or a map, got %T", full, v)
		}
	}
	return nil
}

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// sanitizeMessage strips markup from catalog text. Catalogs may come from
// operator supplied directories and end up inside HTML previews.
func sanitizeMessage(raw string) string {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	cleaned := messagePolicy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
