package questions

import (
	"math/rand/v2"
	"testing"

	"github.com/spigell/interview-coach/internal/skills"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func countSkill(qs []Question, skill string) int {
	n := 0
	for _, q := range qs {
		if q.Skill == skill {
			n++
		}
	}
	return n
}

func assertUnique(t *testing.T, qs []Question) {
	t.Helper()
	seen := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		_, dup := seen[q.Text]
		require.False(t, dup, "duplicate question %q", q.Text)
		seen[q.Text] = struct{}{}
	}
}

func TestSelectPrefersCandidateSkills(t *testing.T) {
	s := NewSelector(DefaultCatalog(), seeded(1))

	got := s.Select(skills.SkillMap{{Name: "programming", Skills: []string{"python"}}}, 3)

	require.Len(t, got, 3)
	assert.Equal(t, 2, countSkill(got, "python"))
	assert.Equal(t, 1, countSkill(got, ""))
	assertUnique(t, got)
}

func TestSelectEmptySkillsUsesGenericFirst(t *testing.T) {
	s := NewSelector(DefaultCatalog(), seeded(2))

	got := s.Select(nil, 5)
	require.Len(t, got, 5)
	assert.Equal(t, 5, countSkill(got, ""))

	got = s.Select(nil, 10)
	require.Len(t, got, 10)
	assert.Equal(t, 5, countSkill(got, ""))
	assertUnique(t, got)
}

func TestSelectIsDeterministicForSeed(t *testing.T) {
	m := skills.SkillMap{
		{Name: "programming", Skills: []string{"python", "java", "javascript", "sql"}},
		{Name: "cloud", Skills: []string{"aws"}},
	}

	a := NewSelector(DefaultCatalog(), seeded(42)).Select(m, 7)
	b := NewSelector(DefaultCatalog(), seeded(42)).Select(m, 7)

	assert.Equal(t, a, b)
}

func TestSelectLengthAndUniqueness(t *testing.T) {
	m := skills.SkillMap{
		{Name: "programming", Skills: []string{"python", "java", "javascript", "sql"}},
		{Name: "databases", Skills: []string{"sql", "redis"}},
		{Name: "cloud", Skills: []string{"aws", "docker"}},
	}

	for seed := uint64(0); seed < 50; seed++ {
		s := NewSelector(DefaultCatalog(), seeded(seed))
		for limit := 3; limit <= 10; limit++ {
			got := s.Select(m, limit)
			require.Len(t, got, limit, "seed %d limit %d", seed, limit)
			assertUnique(t, got)
		}
	}
}

func TestSelectShortCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(`
generic:
  - question: One?
    keywords: [one]
  - question: Two?
    keywords: [two]
`))
	require.NoError(t, err)

	got := NewSelector(catalog, seeded(3)).Select(skills.SkillMap{{Name: "programming", Skills: []string{"python"}}}, 5)
	assert.Len(t, got, 2)
	assert.Empty(t, NewSelector(catalog, seeded(3)).Select(nil, 0))
}
