// Package scoring turns a free-text interview answer into a 0-100 score
// with feedback. A language model grades first; a deterministic lexical
// scorer takes over whenever the model is unavailable or misbehaves.
package scoring

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/spigell/interview-coach/internal/ai"

	"go.uber.org/zap"
)

const (
	DefaultTimeout = 20 * time.Second

	noAnswerFeedback = "No answer provided."
)

// Strategy names the scorer that produced an evaluation. It is kept for
// logs and diagnostics only.
type Strategy string

const (
	StrategyNone    Strategy = "none"
	StrategyModel   Strategy = "model"
	StrategyLexical Strategy = "lexical"
)

var errNoGrader = errors.New("model grading is disabled")

// Evaluation is the result of scoring one answer.
type Evaluation struct {
	Score           int      `json:"score"`
	Feedback        string   `json:"feedback"`
	MissingConcepts []string `json:"missing_concepts"`
	Strategy        Strategy `json:"-"`
}

// Clone returns a copy that shares no slices with e.
func (e Evaluation) Clone() Evaluation {
	e.MissingConcepts = slices.Clone(e.MissingConcepts)
	return e
}

type Scorer struct {
	grader  ai.Grader
	timeout time.Duration
	logger  *zap.Logger
}

// New returns a Scorer. A nil grader makes every answer go straight to
// the lexical strategy.
func New(grader ai.Grader, timeout time.Duration, logger *zap.Logger) *Scorer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{grader: grader, timeout: timeout, logger: logger}
}

// Evaluate scores answer against the concepts expected for question. It
// always returns a usable evaluation.
func (s *Scorer) Evaluate(ctx context.Context, question, answer string, expected []string) Evaluation {
	if strings.TrimSpace(answer) == "" {
		return Evaluation{
			Score:           0,
			Feedback:        noAnswerFeedback,
			MissingConcepts: slices.Clone(expected),
			Strategy:        StrategyNone,
		}
	}

	eval, err := s.grade(ctx, question, answer, expected)
	if err == nil {
		return eval
	}

	if errors.Is(err, errNoGrader) {
		s.logger.Debug("scoring answer lexically", zap.String("reason", err.Error()))
	} else {
		s.logger.Warn("model grading failed, falling back to lexical scoring", zap.Error(err))
	}

	return Lexical(answer, expected)
}

func (s *Scorer) grade(ctx context.Context, question, answer string, expected []string) (Evaluation, error) {
	if s.grader == nil {
		return Evaluation{}, errNoGrader
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	assessment, err := s.grader.Grade(ctx, &ai.Request{
		Question:         question,
		Answer:           answer,
		ExpectedKeywords: expected,
	})
	if err != nil {
		return Evaluation{}, err
	}
	if assessment == nil {
		return Evaluation{}, errors.New("grader returned no assessment")
	}

	score := assessment.Score
	if math.IsNaN(score) {
		return Evaluation{}, errors.New("grader returned a non-numeric score")
	}

	return Evaluation{
		Score:           int(math.Round(math.Min(math.Max(score, 0), 100))),
		Feedback:        assessment.Feedback,
		MissingConcepts: slices.Clone(assessment.MissingConcepts),
		Strategy:        StrategyModel,
	}, nil
}
