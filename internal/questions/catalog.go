// Package questions holds the interview question bank and picks the
// questions asked in a session.
package questions

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Question is one interview question and the concepts a good answer names.
// Skill is empty for generic questions.
type Question struct {
	Skill            string   `yaml:"-" json:"skill,omitempty"`
	Text             string   `yaml:"question" json:"question"`
	ExpectedKeywords []string `yaml:"keywords" json:"expected_keywords"`
}

// Catalog is the question bank: per-skill questions plus generic ones.
type Catalog struct {
	bySkill map[string][]Question
	generic []Question
}

type catalogFile struct {
	Skills  map[string][]Question `yaml:"skills"`
	Generic []Question            `yaml:"generic"`
}

// DefaultCatalog returns the built-in question bank.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded question catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a question bank from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question catalog %q: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML question bank. Question text must be unique
// across the whole catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding question catalog: %w", err)
	}

	c := &Catalog{bySkill: make(map[string][]Question, len(file.Skills))}
	seen := make(map[string]struct{})

	add := func(skill string, q Question) (Question, error) {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			return q, fmt.Errorf("empty question for skill %q", skill)
		}
		if _, ok := seen[q.Text]; ok {
			return q, fmt.Errorf("duplicate question %q", q.Text)
		}
		seen[q.Text] = struct{}{}
		q.Skill = skill
		return q, nil
	}

	for _, skill := range sortedKeys(file.Skills) {
		key := strings.ToLower(strings.TrimSpace(skill))
		for _, q := range file.Skills[skill] {
			q, err := add(key, q)
			if err != nil {
				return nil, err
			}
			c.bySkill[key] = append(c.bySkill[key], q)
		}
	}

	for _, q := range file.Generic {
		q, err := add("", q)
		if err != nil {
			return nil, err
		}
		c.generic = append(c.generic, q)
	}

	return c, nil
}

// ForSkill returns the questions for skill.
func (c *Catalog) ForSkill(skill string) []Question {
	return slices.Clone(c.bySkill[skill])
}

// Generic returns the skill-agnostic questions.
func (c *Catalog) Generic() []Question {
	return slices.Clone(c.generic)
}

// Skills lists the skills that have questions, sorted.
func (c *Catalog) Skills() []string {
	return sortedKeys(c.bySkill)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
