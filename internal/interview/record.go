package interview

import (
	"slices"
	"sync"
	"time"

	"github.com/spigell/interview-coach/internal/questions"
	"github.com/spigell/interview-coach/internal/scoring"
	"github.com/spigell/interview-coach/internal/skills"

	"github.com/google/uuid"
)

const (
	DateLayout  = "2006-01-02 15:04"
	defaultName = "Candidate"
)

// Rating is the verdict derived from an average score.
type Rating string

const (
	RatingExcellent        Rating = "Excellent"
	RatingGood             Rating = "Good"
	RatingAverage          Rating = "Average"
	RatingNeedsImprovement Rating = "Needs Improvement"
)

// RatingFor maps an average score to a rating. Bounds are inclusive.
func RatingFor(avg float64) Rating {
	switch {
	case avg >= 85:
		return RatingExcellent
	case avg >= 70:
		return RatingGood
	case avg >= 50:
		return RatingAverage
	default:
		return RatingNeedsImprovement
	}
}

// AnswerRecord is the candidate's answer to one question and its score.
type AnswerRecord struct {
	Answer     string             `json:"answer"`
	Evaluation scoring.Evaluation `json:"evaluation"`
}

// Record is the finished interview. It is never modified after creation.
type Record struct {
	SessionID     uuid.UUID            `json:"session_id"`
	CandidateName string               `json:"candidate_name"`
	Date          time.Time            `json:"date"`
	Skills        skills.SkillMap      `json:"skills"`
	Questions     []questions.Question `json:"questions"`
	Answers       []AnswerRecord       `json:"answers"`
	AvgScore      float64              `json:"avg_score"`
}

func newRecord(s *Session) *Record {
	name := s.CandidateName
	if name == "" {
		name = defaultName
	}

	rec := &Record{
		SessionID:     s.ID,
		CandidateName: name,
		Date:          s.StartedAt,
		Skills:        s.Skills,
		Questions:     s.Questions,
		Answers:       s.Answers,
		AvgScore:      averageScore(s.Answers),
	}
	return rec.Clone()
}

// Rating is always derived from AvgScore.
func (r *Record) Rating() Rating {
	return RatingFor(r.AvgScore)
}

// DateString formats the interview date for display.
func (r *Record) DateString() string {
	return r.Date.Format(DateLayout)
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	c.Skills = r.Skills.Clone()
	c.Questions = make([]questions.Question, len(r.Questions))
	for i, q := range r.Questions {
		q.ExpectedKeywords = slices.Clone(q.ExpectedKeywords)
		c.Questions[i] = q
	}
	c.Answers = make([]AnswerRecord, len(r.Answers))
	for i, a := range r.Answers {
		c.Answers[i] = AnswerRecord{Answer: a.Answer, Evaluation: a.Evaluation.Clone()}
	}
	return &c
}

func averageScore(answers []AnswerRecord) float64 {
	if len(answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		total += a.Evaluation.Score
	}
	return float64(total) / float64(len(answers))
}

// History keeps finished interviews for the life of the process.
type History struct {
	mu      sync.RWMutex
	records []*Record
}

func NewHistory() *History {
	return &History{}
}

// Append stores a copy of rec.
func (h *History) Append(rec *Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec.Clone())
}

// Records returns copies of every stored record, oldest first.
func (h *History) Records() []*Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Record, len(h.records))
	for i, r := range h.records {
		out[i] = r.Clone()
	}
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
