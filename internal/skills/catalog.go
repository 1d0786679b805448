package skills

import "slices"

// Category groups skill tokens under a display name such as "cloud".
type Category struct {
	Name   string   `yaml:"name" json:"name"`
	Skills []string `yaml:"skills" json:"skills"`
}

// Catalog is the fixed list of skill tokens the extractor looks for.
type Catalog struct {
	categories []Category
}

var defaultCategories = []Category{
	{Name: "programming", Skills: []string{"python", "java", "javascript", "html", "css", "c++", "c#", "ruby", "php", "sql"}},
	{Name: "frameworks", Skills: []string{"react", "angular", "vue", "django", "flask", "spring", "node.js", "express", ".net"}},
	{Name: "databases", Skills: []string{"sql", "mysql", "postgresql", "mongodb", "oracle", "sqlite", "redis"}},
	{Name: "cloud", Skills: []string{"aws", "azure", "gcp", "docker", "kubernetes"}},
	{Name: "tools", Skills: []string{"git", "github", "jira", "jenkins", "agile", "scrum"}},
}

// DefaultCatalog returns the built-in five-category skill catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultCategories)
}

// NewCatalog copies categories into a catalog.
func NewCatalog(categories []Category) *Catalog {
	return &Catalog{categories: SkillMap(categories).Clone()}
}

// Contains reports whether skill is known in any category.
func (c *Catalog) Contains(skill string) bool {
	for _, cat := range c.categories {
		if slices.Contains(cat.Skills, skill) {
			return true
		}
	}
	return false
}
