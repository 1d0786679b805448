package interview

import (
	"fmt"
	"strings"

	"github.com/spigell/interview-coach/internal/scoring"
	"github.com/spigell/interview-coach/internal/skills"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reply is what the assistant says back for one user turn.
type Reply struct {
	Messages []string
}

func (r Reply) String() string {
	return strings.Join(r.Messages, "\n\n")
}

func reply(messages ...string) Reply {
	return Reply{Messages: messages}
}

func categoryTitle(name string) string {
	return cases.Title(language.English).String(name)
}

// FormatSkills renders one "Category: a, b" line per category.
func FormatSkills(m skills.SkillMap) string {
	lines := make([]string, 0, len(m))
	for _, c := range m {
		if len(c.Skills) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", categoryTitle(c.Name), strings.Join(c.Skills, ", ")))
	}
	return strings.Join(lines, "\n")
}

func formatEvaluation(ar AnswerRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d/100\n\n%s", ar.Evaluation.Score, ar.Evaluation.Feedback)
	if missing := improvements(ar.Evaluation); len(missing) > 0 {
		b.WriteString("\n\nImprove:")
		for _, c := range missing {
			b.WriteString("\n- " + c)
		}
	}
	return b.String()
}

// improvements is the list shown under "Improve:". Lexical feedback already
// names the missing concepts in its text.
func improvements(e scoring.Evaluation) []string {
	if e.Strategy == scoring.StrategyLexical {
		return nil
	}
	return e.MissingConcepts
}

func formatSummary(rec *Record) string {
	return fmt.Sprintf("Interview complete!\nOverall score: %.1f/100\nRating: %s\n\nOptions:\n%s",
		rec.AvgScore, rec.Rating(), optionsMenu)
}

// FormatReview replays every question with its answer, score and feedback
// in the order asked.
func FormatReview(rec *Record) string {
	var b strings.Builder
	b.WriteString("Your responses")
	for i, ar := range rec.Answers {
		fmt.Fprintf(&b, "\n\nQuestion %d: %s\nAnswer: %s\nScore: %d/100\nFeedback: %s",
			i+1, rec.Questions[i].Text, ar.Answer, ar.Evaluation.Score, ar.Evaluation.Feedback)
		if missing := improvements(ar.Evaluation); len(missing) > 0 {
			b.WriteString("\nImprove:")
			for _, c := range missing {
				b.WriteString("\n- " + c)
			}
		}
		b.WriteString("\n---")
	}
	return b.String()
}

// FormatHistory lists past interviews with their per-question scores.
func FormatHistory(records []*Record) string {
	if len(records) == 0 {
		return noHistory
	}

	var b strings.Builder
	b.WriteString("Interview history")
	for idx, rec := range records {
		fmt.Fprintf(&b, "\n\nInterview %d: %s (%s)\nScore: %.1f/100\nRating: %s\nSkills:",
			idx+1, rec.CandidateName, rec.DateString(), rec.AvgScore, rec.Rating())
		for _, c := range rec.Skills {
			fmt.Fprintf(&b, "\n- %s: %s", categoryTitle(c.Name), strings.Join(c.Skills, ", "))
		}
		b.WriteString("\nQuestions:")
		for i, ar := range rec.Answers {
			fmt.Fprintf(&b, "\n- Q%d: %s\n  - Answer: %s\n  - Score: %d/100",
				i+1, rec.Questions[i].Text, ar.Answer, ar.Evaluation.Score)
		}
		b.WriteString("\n---")
	}
	return b.String()
}
