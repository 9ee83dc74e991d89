package checklist

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/agentboard/internal/model"
)

//go:embed default_template.yaml
var defaultTemplateYAML []byte

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// TemplateItem is one entry of the onboarding checklist template.
type TemplateItem struct {
	Key      string         `yaml:"key" json:"key"`
	Name     string         `yaml:"name" json:"name"`
	Category model.Category `yaml:"category" json:"category"`
	Order    int            `yaml:"order" json:"order"`
}

// Template is the ordered checklist every agent starts with, plus the
// per-category age after which an incomplete item counts as overdue.
//
// A Template is loaded once at startup and never mutated afterwards.
type Template struct {
	Items []TemplateItem `yaml:"items" json:"items"`

	// StaleAfterDays maps category name to days. A category without an entry
	// never raises overdue alerts.
	StaleAfterDays map[string]int `yaml:"stale_after_days" json:"stale_after_days"`
}

// TemplateError describes an invalid template.
type TemplateError struct {
	Source  string
	Message string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("checklist template %s: %s", e.Source, e.Message)
}

// DefaultTemplate returns the built-in ten-item template.
func DefaultTemplate() *Template {
	t, err := ParseTemplateYAML(defaultTemplateYAML, "default")
	if err != nil {
		// The embedded template is covered by tests; a failure here is a build defect.
		panic(err)
	}
	return t
}

// LoadTemplate reads a template from path. Files ending in .cue are
// evaluated with CUE; .yaml and .yml files are decoded strictly.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist template: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return ParseTemplateCUE(data, path)
	case ".yaml", ".yml":
		return ParseTemplateYAML(data, path)
	default:
		return nil, &TemplateError{Source: path, Message: "unsupported extension (want .yaml, .yml or .cue)"}
	}
}

// ParseTemplateYAML decodes and validates a YAML template. Unknown fields are rejected.
func ParseTemplateYAML(data []byte, source string) (*Template, error) {
	var t Template
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&t); err != nil {
		return nil, &TemplateError{Source: source, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	return finish(&t, source)
}

// ParseTemplateCUE evaluates and validates a CUE template.
func ParseTemplateCUE(data []byte, source string) (*Template, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(source))
	if err := v.Err(); err != nil {
		return nil, &TemplateError{Source: source, Message: fmt.Sprintf("failed to compile CUE: %v", err)}
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, &TemplateError{Source: source, Message: fmt.Sprintf("template is not concrete: %v", err)}
	}

	var t Template
	if err := v.Decode(&t); err != nil {
		return nil, &TemplateError{Source: source, Message: fmt.Sprintf("failed to decode CUE: %v", err)}
	}
	return finish(&t, source)
}

// finish normalizes, validates and orders a decoded template.
func finish(t *Template, source string) (*Template, error) {
	if len(t.Items) == 0 {
		return nil, &TemplateError{Source: source, Message: "template has no items"}
	}

	keys := make(map[string]bool, len(t.Items))
	orders := make(map[int]string, len(t.Items))
	for i := range t.Items {
		item := &t.Items[i]
		item.Key = strings.TrimSpace(item.Key)
		item.Name = norm.NFC.String(strings.TrimSpace(item.Name))

		if !keyPattern.MatchString(item.Key) {
			return nil, &TemplateError{Source: source, Message: fmt.Sprintf("item %d: key %q is not a lowercase slug", i, item.Key)}
		}
		if keys[item.Key] {
			return nil, &TemplateError{Source: source, Message: fmt.Sprintf("duplicate key %q", item.Key)}
		}
		keys[item.Key] = true

		if item.Name == "" {
			return nil, &TemplateError{Source: source, Message: fmt.Sprintf("item %q: name is required", item.Key)}
		}
		if !item.Category.Valid() {
			return nil, &TemplateError{Source: source, Message: fmt.Sprintf("item %q: unknown category %q", item.Key, item.Category)}
		}
		if item.Order <= 0 {
			return nil, &TemplateError{Source: source, Message: fmt.Sprintf("item %q: order must be positive", item.Key)}
		}
		if other, dup := orders[item.Order]; dup {
			return nil, &TemplateError{Source: source, Message: fmt.Sprintf("items %q and %q share order %d", other, item.Key, item.Order)}
		}
		orders[item.Order] = item.Key
	}

	for name, days := range t.StaleAfterDays {
		if !model.Category(name).Valid() {
			return nil, &TemplateError{Source: source, Message: fmt.Sprintf("stale_after_days: unknown category %q", name)}
		}
		if days <= 0 {
			return nil, &TemplateError{Source: source, Message: fmt.Sprintf("stale_after_days.%s must be positive", name)}
		}
	}

	sort.SliceStable(t.Items, func(i, j int) bool { return t.Items[i].Order < t.Items[j].Order })
	return t, nil
}

// StaleAfter returns the overdue threshold in days for category c and
// whether one is configured.
func (t *Template) StaleAfter(c model.Category) (int, bool) {
	days, ok := t.StaleAfterDays[string(c)]
	return days, ok
}

// Keys returns item keys in template order.
func (t *Template) Keys() []string {
	keys := make([]string, len(t.Items))
	for i, item := range t.Items {
		keys[i] = item.Key
	}
	return keys
}
