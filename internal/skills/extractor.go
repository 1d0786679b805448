// Package skills finds technical skill tokens in résumé text.
package skills

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spigell/interview-coach/internal/textnorm"

	"go.uber.org/zap"
)

const snippetLength = 50

var (
	cuePattern   = regexp.MustCompile(`\b(?:skills|experience|proficient in|worked with|knowledge of|using|expertise in)`)
	tokenPattern = regexp.MustCompile(`[a-z0-9+#.]+`)
)

// Match records where a skill was found during extraction.
type Match struct {
	Category string
	Skill    string
	Snippet  string
}

func (m Match) String() string {
	return fmt.Sprintf("Matched '%s' in: '%s...'", m.Skill, m.Snippet)
}

type Extractor struct {
	catalog *Catalog
	logger  *zap.Logger

	// match is swapped in tests to exercise the recovery path.
	match func(text string) (SkillMap, []Match)
}

func NewExtractor(catalog *Catalog, logger *zap.Logger) *Extractor {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Extractor{catalog: catalog, logger: logger}
	e.match = e.matchInContext
	return e
}

// Extract returns the skills mentioned after a context cue such as
// "proficient in" or "experience". Empty text yields an empty map.
func (e *Extractor) Extract(text string) SkillMap {
	skills, _ := e.ExtractWithMatches(text)
	return skills
}

// ExtractWithMatches is Extract plus the matched snippets for display.
// It never panics: an internal failure degrades to plain substring
// matching over the whole text.
func (e *Extractor) ExtractWithMatches(text string) (skills SkillMap, matches []Match) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("skill extraction failed, falling back to substring matching",
				zap.Any("panic", r),
			)
			skills, matches = e.matchSubstrings(text), nil
		}
	}()

	return e.match(strings.ToLower(text))
}

// ParseList matches catalog skills anywhere in text, without requiring a
// context cue. It is meant for input where the user lists skills directly.
func (e *Extractor) ParseList(text string) SkillMap {
	tokens := tokenSet(strings.ToLower(text))

	var result SkillMap
	for _, cat := range e.catalog.categories {
		for _, skill := range cat.Skills {
			if _, ok := tokens[skill]; ok {
				result.Add(cat.Name, skill)
			}
		}
	}
	return result
}

func (e *Extractor) matchInContext(text string) (SkillMap, []Match) {
	type window struct {
		text   string
		tokens map[string]struct{}
	}

	var windows []window
	for _, sentence := range splitSentences(text) {
		loc := cuePattern.FindStringIndex(sentence)
		if loc == nil {
			continue
		}
		w := sentence[loc[0]:]
		windows = append(windows, window{text: w, tokens: tokenSet(w)})
	}

	var (
		result  SkillMap
		matches []Match
	)
	for _, cat := range e.catalog.categories {
		for _, skill := range cat.Skills {
			for _, w := range windows {
				if _, ok := w.tokens[skill]; !ok {
					continue
				}
				result.Add(cat.Name, skill)
				matches = append(matches, Match{
					Category: cat.Name,
					Skill:    skill,
					Snippet:  truncate(w.text, snippetLength),
				})
				break
			}
		}
	}

	e.logger.Debug("extracted skills",
		zap.Int("windows", len(windows)),
		zap.Int("matches", len(matches)),
	)

	return result, matches
}

func (e *Extractor) matchSubstrings(text string) SkillMap {
	lower := strings.ToLower(text)

	var result SkillMap
	for _, cat := range e.catalog.categories {
		for _, skill := range cat.Skills {
			if strings.Contains(lower, skill) {
				result.Add(cat.Name, skill)
			}
		}
	}
	return result
}

// splitSentences breaks text at newlines and at periods followed by
// whitespace or the end of text, so tokens like "node.js" stay whole.
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
		case '.':
			if i+1 < len(text) && !isSpace(text[i+1]) {
				continue
			}
		default:
			continue
		}
		out = append(out, text[start:i])
		start = i + 1
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// tokenSet returns every skill-shaped token of text together with its
// dot-stripped and lemmatized forms.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		tok = strings.TrimRight(tok, ".")
		if tok == "" {
			continue
		}
		set[tok] = struct{}{}
		bare := strings.TrimLeft(tok, ".")
		set[bare] = struct{}{}
		set[textnorm.Lemma(bare)] = struct{}{}
	}
	return set
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}
