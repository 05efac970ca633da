package intelligence

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidChecklist is returned when a checklist file cannot be used.
var ErrInvalidChecklist = errors.New("invalid checklist")

// Checklist is the ordered list of company-profile items the intake collects.
type Checklist struct {
	Items []string `yaml:"items"`
}

// DefaultChecklist returns the built-in eight-item company profile checklist.
func DefaultChecklist() Checklist {
	return Checklist{Items: []string{
		"Company name and brief description",
		"Brand guidelines (tone, style)",
		"Target market segments",
		"Standard development methodology",
		"Company-wide tech stack",
		"General approval and review processes",
		"Key compliance and security standards",
		"Integration requirements with existing systems",
	}}
}

// LoadChecklist reads a YAML checklist from path. An empty path yields the default.
func LoadChecklist(path string) (Checklist, error) {
	if path == "" {
		return DefaultChecklist(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Checklist{}, fmt.Errorf("reading checklist %s: %w", path, err)
	}
	return ParseChecklist(data)
}

// ParseChecklist decodes a YAML document of the form `items: [...]`.
func ParseChecklist(data []byte) (Checklist, error) {
	var raw Checklist
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Checklist{}, fmt.Errorf("%w: %v", ErrInvalidChecklist, err)
	}

	var cl Checklist
	for _, item := range raw.Items {
		item = strings.TrimSpace(item)
		if item != "" {
			cl.Items = append(cl.Items, item)
		}
	}
	if len(cl.Items) == 0 {
		return Checklist{}, fmt.Errorf("%w: no items", ErrInvalidChecklist)
	}
	return cl, nil
}

// Numbered renders the items as a 1-based numbered list.
func (c Checklist) Numbered() string {
	var b strings.Builder
	for i, item := range c.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}
