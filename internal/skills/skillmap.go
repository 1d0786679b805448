package skills

import "slices"

// SkillMap is an ordered category -> skills mapping. Skills inside a
// category are unique and keep insertion order.
type SkillMap []Category

// Get returns the skills of category or nil.
func (m SkillMap) Get(category string) []string {
	for _, c := range m {
		if c.Name == category {
			return c.Skills
		}
	}
	return nil
}

// Add appends skills to category, creating it at the end when missing.
// Skills already present are ignored.
func (m *SkillMap) Add(category string, skills ...string) {
	if len(skills) == 0 {
		return
	}
	for i := range *m {
		c := &(*m)[i]
		if c.Name != category {
			continue
		}
		for _, s := range skills {
			if !slices.Contains(c.Skills, s) {
				c.Skills = append(c.Skills, s)
			}
		}
		return
	}

	added := make([]string, 0, len(skills))
	for _, s := range skills {
		if !slices.Contains(added, s) {
			added = append(added, s)
		}
	}
	*m = append(*m, Category{Name: category, Skills: added})
}

// Merge returns a copy of m with every skill of other added. Nothing is
// ever removed from m.
func (m SkillMap) Merge(other SkillMap) SkillMap {
	merged := m.Clone()
	for _, c := range other {
		merged.Add(c.Name, c.Skills...)
	}
	return merged
}

// Flatten lists every skill once, in category order.
func (m SkillMap) Flatten() []string {
	var all []string
	for _, c := range m {
		for _, s := range c.Skills {
			if !slices.Contains(all, s) {
				all = append(all, s)
			}
		}
	}
	return all
}

// IsEmpty reports whether no category carries a skill.
func (m SkillMap) IsEmpty() bool {
	for _, c := range m {
		if len(c.Skills) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m SkillMap) Clone() SkillMap {
	if m == nil {
		return nil
	}
	out := make(SkillMap, len(m))
	for i, c := range m {
		out[i] = Category{Name: c.Name, Skills: slices.Clone(c.Skills)}
	}
	return out
}
