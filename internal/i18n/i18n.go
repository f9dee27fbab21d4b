package i18n

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Lang is a supported UI locale.
type Lang string

const (
	English Lang = "en"
	Arabic  Lang = "ar"

	Default = English
)

var Supported = []Lang{English, Arabic}

func (l Lang) Valid() bool {
	return l == English || l == Arabic
}

func (l Lang) IsRTL() bool {
	return l == Arabic
}

func (l Lang) Dir() string {
	if l.IsRTL() {
		return "rtl"
	}
	return "ltr"
}

func (l Lang) NativeName() string {
	if l == Arabic {
		return "العربية"
	}
	return "English"
}

// ParseLang accepts "en", "AR", " ar " and friends.
func ParseLang(s string) (Lang, error) {
	l := Lang(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unsupported language %q", s)
	}
	return l, nil
}

// Translator resolves dotted keys against the embedded locale tables.
type Translator struct {
	tables map[Lang]map[string]any
}

func NewTranslator() (*Translator, error) {
	t := &Translator{tables: make(map[Lang]map[string]any, len(Supported))}
	for _, lang := range Supported {
		raw, err := localeFS.ReadFile("locales/" + string(lang) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", lang, err)
		}
		table := make(map[string]any)
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", lang, err)
		}
		t.tables[lang] = table
	}
	return t, nil
}

// T returns the string at key, or key itself when there is no non-empty string there.
func (t *Translator) T(lang Lang, key string) string {
	if s, ok := t.lookup(lang, key).(string); ok && s != "" {
		return s
	}
	return key
}

// List returns the string array at key, or nil.
func (t *Translator) List(lang Lang, key string) []string {
	items, ok := t.lookup(lang, key).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (t *Translator) lookup(lang Lang, key string) any {
	var node any = t.tables[lang]
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[part]
	}
	return node
}
