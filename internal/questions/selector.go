package questions

import (
	"math/rand/v2"
	"slices"

	"github.com/spigell/interview-coach/internal/skills"
)

const (
	maxSampledSkills  = 3
	questionsPerSkill = 2
)

// Selector picks the questions for one interview. All randomness comes
// from the injected source, so a fixed seed gives a fixed selection.
type Selector struct {
	catalog *Catalog
	rng     *rand.Rand
}

func NewSelector(catalog *Catalog, rng *rand.Rand) *Selector {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{catalog: catalog, rng: rng}
}

// Select returns at most limit unique questions. Up to three of the
// candidate's skills contribute two questions each, generic questions fill
// the gaps, and questions for other catalog skills are used last. The
// result is shorter than limit when the catalog runs out.
func (s *Selector) Select(skillMap skills.SkillMap, limit int) []Question {
	if limit <= 0 {
		return nil
	}

	var picked []Question

	sampled := sample(s.rng, skillMap.Flatten(), maxSampledSkills)
	for _, skill := range sampled {
		picked = append(picked, sample(s.rng, s.catalog.ForSkill(skill), questionsPerSkill)...)
	}

	if remaining := limit - len(picked); remaining > 0 {
		picked = append(picked, sample(s.rng, s.catalog.Generic(), remaining)...)
	}

	if remaining := limit - len(picked); remaining > 0 {
		var others []Question
		for _, skill := range s.catalog.Skills() {
			if slices.Contains(sampled, skill) {
				continue
			}
			others = append(others, s.catalog.ForSkill(skill)...)
		}
		picked = append(picked, sample(s.rng, others, remaining)...)
	}

	s.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	unique := make([]Question, 0, len(picked))
	seen := make(map[string]struct{}, len(picked))
	for _, q := range picked {
		if _, ok := seen[q.Text]; ok {
			continue
		}
		seen[q.Text] = struct{}{}
		unique = append(unique, q)
	}

	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// sample draws up to n distinct elements of items in random order.
func sample[T any](rng *rand.Rand, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, 0, n)
	for _, i := range rng.Perm(len(items))[:n] {
		out = append(out, items[i])
	}
	return slices.Clip(out)
}
