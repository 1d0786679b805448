// Package interview runs the résumé-screening conversation: it moves a
// session from résumé intake through skill confirmation and questioning to
// a finished, scored record.
package interview

import (
	"time"

	"github.com/spigell/interview-coach/internal/questions"
	"github.com/spigell/interview-coach/internal/skills"

	"github.com/google/uuid"
)

// State is a phase of the interview conversation.
type State string

const (
	StateAwaitingResume  State = "awaiting_resume"
	StateAnalyzingResume State = "analyzing_resume"
	StateManualSkills    State = "manual_skills"
	StateConfirmSkills   State = "confirm_skills"
	StateInterview       State = "interview"
	StateComplete        State = "complete"
)

// Session is the mutable context of one interview. The machine owns it;
// finished results are copied out into a Record.
type Session struct {
	ID            uuid.UUID
	CandidateName string
	StartedAt     time.Time
	State         State

	ResumeText string
	Skills     skills.SkillMap
	Matches    []skills.Match

	// Questions is fixed once the interview starts. Answers[i] belongs to
	// Questions[i], and Index always equals len(Answers).
	Questions []questions.Question
	Answers   []AnswerRecord
	Index     int

	Record *Record

	turns int
}

func NewSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		StartedAt: now,
		State:     StateAwaitingResume,
	}
}

// Progress is the share of questions answered, 0 when there are none.
func (s *Session) Progress() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	return float64(s.Index) / float64(len(s.Questions))
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (questions.Question, bool) {
	if s.State != StateInterview || s.Index >= len(s.Questions) {
		return questions.Question{}, false
	}
	return s.Questions[s.Index], true
}
