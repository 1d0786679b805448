package scoring

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/spigell/interview-coach/internal/textnorm"
)

var vectorToken = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

var bandFeedback = map[Band]string{
	BandStrong:  "Your answer covered most expected concepts well.",
	BandPartial: "You addressed some key points, but could elaborate more.",
	BandWeak:    "Your answer missed several important concepts.",
}

// Lexical scores answer by the TF-IDF cosine similarity between the
// normalized answer and the expected keywords. The result depends only on
// its inputs.
func Lexical(answer string, expected []string) Evaluation {
	normalized := textnorm.Normalize(answer)

	similarity := cosineTFIDF(
		strings.Join(normalized, " "),
		strings.Join(expected, " "),
	)
	score := int(math.Round(similarity * 100))

	missing := missingConcepts(answer, normalized, expected)

	feedback := bandFeedback[BandOf(score)]
	if len(missing) > 0 {
		feedback += fmt.Sprintf(" Try including: %s.", strings.Join(missing, ", "))
	}

	return Evaluation{
		Score:           score,
		Feedback:        feedback,
		MissingConcepts: missing,
		Strategy:        StrategyLexical,
	}
}

// missingConcepts lists keywords whose normalized words are not all in the
// answer. Keywords without word characters, such as "@", are looked up
// literally.
func missingConcepts(answer string, normalized, expected []string) []string {
	words := textnorm.Set(normalized)
	lower := strings.ToLower(answer)

	missing := []string{}
	for _, kw := range expected {
		tokens := textnorm.Normalize(kw)

		present := len(tokens) > 0
		for _, tok := range tokens {
			if _, ok := words[tok]; !ok {
				present = false
				break
			}
		}
		if len(tokens) == 0 {
			present = strings.Contains(lower, strings.ToLower(strings.TrimSpace(kw)))
		}

		if !present {
			missing = append(missing, kw)
		}
	}
	return missing
}

// cosineTFIDF vectorizes the two documents with smoothed inverse document
// frequency and L2 normalization, then returns their cosine similarity.
func cosineTFIDF(a, b string) float64 {
	docs := [2]map[string]int{termCounts(a), termCounts(b)}

	vocab := make(map[string]struct{})
	for _, d := range docs {
		for term := range d {
			vocab[term] = struct{}{}
		}
	}
	terms := make([]string, 0, len(vocab))
	for term := range vocab {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	n := float64(len(docs))
	vectors := [2][]float64{make([]float64, len(terms)), make([]float64, len(terms))}
	for i, term := range terms {
		df := 0
		for _, d := range docs {
			if d[term] > 0 {
				df++
			}
		}
		idf := math.Log((1+n)/(1+float64(df))) + 1
		for j, d := range docs {
			vectors[j][i] = float64(d[term]) * idf
		}
	}

	normA, normB := norm(vectors[0]), norm(vectors[1])
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	for i := range terms {
		dot += vectors[0][i] * vectors[1][i]
	}
	return dot / (normA * normB)
}

func termCounts(doc string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range vectorToken.FindAllString(strings.ToLower(doc), -1) {
		counts[tok]++
	}
	return counts
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
