package interview

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/questions"
	"github.com/spigell/interview-coach/internal/scoring"
	"github.com/spigell/interview-coach/internal/skills"

	"go.uber.org/zap"
)

const (
	DefaultMaxQuestions = 5
	MinQuestions        = 3
	MaxQuestions        = 10

	maxNameWords = 3
)

var (
	// Whole words only, so "already" or "yesterday" do not start the interview.
	confirmPattern = regexp.MustCompile(`\b(?:start\s+interview|ready|yes)\b`)
	defaultSkills  = skills.SkillMap{
		{Name: "programming", Skills: []string{"python"}},
		{Name: "tools", Skills: []string{"git"}},
	}
)

// Scorer grades one answer. It must always return a usable evaluation.
type Scorer interface {
	Evaluate(ctx context.Context, question, answer string, expected []string) scoring.Evaluation
}

// Reporter turns a finished record into a document or an email.
type Reporter interface {
	Export(ctx context.Context, rec *Record) (string, error)
	Send(ctx context.Context, rec *Record, to string) error
}

// Deps are the collaborators a Machine drives.
type Deps struct {
	Extractor *skills.Extractor
	Selector  *questions.Selector
	Scorer    Scorer
	// Reporter is optional; without it export and email requests are declined.
	Reporter Reporter
	History  *History
}

type Options struct {
	MaxQuestions int
	// Recipient is the logged-in user's address. Empty means email delivery
	// is unavailable.
	Recipient string
	Rand      *rand.Rand
	Now       func() time.Time
}

// Machine is the interview state machine. It keeps no per-session state of
// its own: every call receives the session it should act on.
type Machine struct {
	extractor    *skills.Extractor
	selector     *questions.Selector
	scorer       Scorer
	reporter     Reporter
	history      *History
	maxQuestions int
	recipient    string
	rng          *rand.Rand
	now          func() time.Time
	logger       *zap.Logger
}

func NewMachine(deps Deps, opts Options, log *zap.Logger) *Machine {
	m := &Machine{
		extractor:    deps.Extractor,
		selector:     deps.Selector,
		scorer:       deps.Scorer,
		reporter:     deps.Reporter,
		history:      deps.History,
		maxQuestions: opts.MaxQuestions,
		recipient:    strings.TrimSpace(opts.Recipient),
		rng:          opts.Rand,
		now:          opts.Now,
		logger:       logger.WithFields(log),
	}

	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.extractor == nil {
		m.extractor = skills.NewExtractor(nil, m.logger)
	}
	if m.selector == nil {
		m.selector = questions.NewSelector(nil, m.rng)
	}
	if m.scorer == nil {
		m.scorer = scoring.New(nil, 0, m.logger)
	}
	if m.history == nil {
		m.history = NewHistory()
	}
	if m.maxQuestions == 0 {
		m.maxQuestions = DefaultMaxQuestions
	}
	m.maxQuestions = min(max(m.maxQuestions, MinQuestions), MaxQuestions)

	return m
}

// Start opens a new session and returns the greeting.
func (m *Machine) Start() (*Session, Reply) {
	sess := NewSession(m.now())
	m.logger.Info("session started", logger.SessionFields(sess.ID.String(), string(sess.State))...)
	return sess, reply(m.pick(welcomeMessages) + " " + m.pick(resumePrompts))
}

// History exposes the finished interviews.
func (m *Machine) History() *History {
	return m.history
}

// Handle processes one user turn. The returned session is the one to pass
// on the next turn; it differs from sess only after a reset.
func (m *Machine) Handle(ctx context.Context, sess *Session, input string) (*Session, Reply) {
	if sess == nil {
		return m.Start()
	}

	sess.turns++
	input = strings.TrimSpace(input)
	before := sess.State

	var out Reply
	switch sess.State {
	case StateAwaitingResume:
		out = m.awaitResume(sess, input)
	case StateAnalyzingResume:
		out = m.analyze(sess, sess.ResumeText)
	case StateManualSkills:
		out = m.manualSkills(sess, input)
	case StateConfirmSkills:
		out = m.confirmSkills(ctx, sess, input)
	case StateInterview:
		out = m.answer(ctx, sess, input)
	case StateComplete:
		return m.complete(ctx, sess, input)
	default:
		m.logger.Error("unknown session state, resetting", logger.SessionFields(sess.ID.String(), string(sess.State))...)
		return m.Start()
	}

	if sess.State != before {
		m.logger.Debug("session state changed",
			append(logger.SessionFields(sess.ID.String(), string(sess.State)), zap.String("from", string(before)))...,
		)
	}
	return sess, out
}

// IngestDocument feeds text extracted from an uploaded résumé file into
// the session.
func (m *Machine) IngestDocument(sess *Session, text string) Reply {
	if sess.State != StateAwaitingResume {
		return reply(documentNotExpected)
	}
	if strings.TrimSpace(text) == "" {
		return reply(emptyDocument)
	}
	return m.analyze(sess, text)
}

func (m *Machine) awaitResume(sess *Session, input string) Reply {
	if input == "" {
		return reply(m.pick(resumePrompts))
	}

	if sess.turns == 1 && sess.CandidateName == "" && len(strings.Fields(input)) <= maxNameWords {
		sess.CandidateName = input
		return reply(fmt.Sprintf(namePrompt, input))
	}

	return m.analyze(sess, input)
}

func (m *Machine) analyze(sess *Session, text string) Reply {
	sess.ResumeText = text
	sess.State = StateAnalyzingResume

	found, matches := m.extractor.ExtractWithMatches(text)
	sess.Matches = matches

	if found.IsEmpty() {
		sess.State = StateManualSkills
		return reply(noSkillsPrompt)
	}

	sess.Skills = found
	sess.State = StateConfirmSkills

	msg := m.pick(skillMessages) + "\n\n" + FormatSkills(found)
	if len(matches) > 0 {
		lines := make([]string, len(matches))
		for i, match := range matches {
			lines[i] = match.String()
		}
		msg += "\n\nDebug info:\n" + strings.Join(lines, "\n")
	}
	return reply(msg, confirmSkillsPrompt)
}

func (m *Machine) manualSkills(sess *Session, input string) Reply {
	parsed := m.extractor.ParseList(input)
	if parsed.IsEmpty() {
		parsed = defaultSkills.Clone()
	}

	sess.Skills = parsed
	sess.State = StateConfirmSkills
	return reply("Added skills:\n\n"+FormatSkills(parsed), manualSkillsPrompt)
}

func (m *Machine) confirmSkills(ctx context.Context, sess *Session, input string) Reply {
	if confirmPattern.MatchString(strings.ToLower(input)) {
		return m.beginInterview(ctx, sess)
	}

	added := m.extractor.Extract(input)
	if added.IsEmpty() {
		added = m.extractor.ParseList(input)
	}
	if added.IsEmpty() {
		return reply(awaitingStart)
	}

	sess.Skills = sess.Skills.Merge(added)
	return reply(skillsUpdated, FormatSkills(sess.Skills))
}

func (m *Machine) beginInterview(ctx context.Context, sess *Session) Reply {
	sess.Questions = m.selector.Select(sess.Skills, m.maxQuestions)
	sess.Answers = nil
	sess.Index = 0
	sess.State = StateInterview

	m.logger.Info("interview started",
		append(logger.SessionFields(sess.ID.String(), string(sess.State)), zap.Int("questions", len(sess.Questions)))...,
	)

	if len(sess.Questions) == 0 {
		return reply(noQuestions, m.finish(ctx, sess))
	}

	return reply(fmt.Sprintf("%s\n\nQuestion 1: %s", m.pick(interviewStartMessages), sess.Questions[0].Text))
}

func (m *Machine) answer(ctx context.Context, sess *Session, input string) Reply {
	q, ok := sess.Current()
	if !ok {
		return reply(m.finish(ctx, sess))
	}

	eval := m.scorer.Evaluate(ctx, q.Text, input, q.ExpectedKeywords)
	record := AnswerRecord{Answer: input, Evaluation: eval}
	sess.Answers = append(sess.Answers, record)
	sess.Index++

	m.logger.Debug("answer scored",
		append(logger.SessionFields(sess.ID.String(), string(sess.State)),
			zap.Int("question", sess.Index),
			zap.Int("score", eval.Score),
			zap.String("strategy", string(eval.Strategy)),
		)...,
	)

	feedback := m.pick(evaluationMessages[scoring.BandOf(eval.Score)]) + "\n\n" + formatEvaluation(record)

	if sess.Index < len(sess.Questions) {
		next := fmt.Sprintf("%s\n\nQuestion %d: %s", m.pick(questionTransitions), sess.Index+1, sess.Questions[sess.Index].Text)
		return reply(feedback, next)
	}

	return reply(feedback, m.finish(ctx, sess))
}

// finish freezes the session into a record and files it in history.
func (m *Machine) finish(_ context.Context, sess *Session) string {
	sess.Index = len(sess.Questions)
	sess.State = StateComplete

	rec := newRecord(sess)
	sess.Record = rec
	m.history.Append(rec)

	m.logger.Info("interview complete",
		append(logger.SessionFields(sess.ID.String(), string(sess.State)),
			zap.Float64("avg_score", rec.AvgScore),
			zap.String("rating", string(rec.Rating())),
			zap.Int("history_size", m.history.Len()),
		)...,
	)

	return formatSummary(rec)
}

func (m *Machine) complete(ctx context.Context, sess *Session, input string) (*Session, Reply) {
	lower := strings.ToLower(input)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	rec := sess.Record
	if rec == nil {
		rec = newRecord(sess)
		sess.Record = rec
	}

	switch {
	case has("review", "answers"):
		return sess, reply(FormatReview(rec))
	case has("pdf", "export"):
		return sess, m.export(ctx, sess, rec)
	case has("email", "send"):
		return sess, m.send(ctx, sess, rec)
	case has("history", "past"):
		return sess, reply(FormatHistory(m.history.Records()))
	case has("new", "start"):
		m.logger.Info("session reset", logger.SessionFields(sess.ID.String(), string(sess.State))...)
		return m.Start()
	default:
		return sess, reply("What's next?\n" + optionsMenu)
	}
}

func (m *Machine) export(ctx context.Context, sess *Session, rec *Record) Reply {
	if m.reporter == nil {
		return reply(noReporter)
	}

	path, err := m.reporter.Export(ctx, rec)
	if err != nil {
		m.logger.Warn("report export failed",
			append(logger.SessionFields(sess.ID.String(), string(sess.State)), zap.Error(err))...,
		)
		return reply(fmt.Sprintf("PDF generation error: %v", err))
	}
	return reply(fmt.Sprintf("PDF ready: %s", path))
}

func (m *Machine) send(ctx context.Context, sess *Session, rec *Record) Reply {
	if m.recipient == "" {
		return reply(noRecipient)
	}
	if m.reporter == nil {
		return reply(noReporter)
	}

	if err := m.reporter.Send(ctx, rec, m.recipient); err != nil {
		m.logger.Warn("report delivery failed",
			append(logger.SessionFields(sess.ID.String(), string(sess.State)), zap.Error(err))...,
		)
		return reply(emailFailed)
	}
	return reply(fmt.Sprintf("Results sent to %s!", m.recipient))
}

func (m *Machine) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[m.rng.IntN(len(pool))]
}
