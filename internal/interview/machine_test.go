package interview

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/spigell/interview-coach/internal/questions"
	"github.com/spigell/interview-coach/internal/scoring"
	"github.com/spigell/interview-coach/internal/skills"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)

type fixedScorer struct {
	scores []int
	calls  int
}

func (f *fixedScorer) Evaluate(_ context.Context, _, answer string, expected []string) scoring.Evaluation {
	if strings.TrimSpace(answer) == "" {
		return scoring.Evaluation{Score: 0, Feedback: "No answer provided.", MissingConcepts: expected}
	}
	score := f.scores[f.calls%len(f.scores)]
	f.calls++
	return scoring.Evaluation{Score: score, Feedback: "feedback " + answer, MissingConcepts: []string{"concept"}}
}

type stubReporter struct {
	path      string
	exportErr error
	sendErr   error
	sentTo    string
	exported  *Record
}

func (s *stubReporter) Export(_ context.Context, rec *Record) (string, error) {
	s.exported = rec
	return s.path, s.exportErr
}

func (s *stubReporter) Send(_ context.Context, rec *Record, to string) error {
	s.exported = rec
	s.sentTo = to
	return s.sendErr
}

func newTestMachine(t *testing.T, scorer Scorer, reporter Reporter, opts Options) *Machine {
	t.Helper()
	rng := rand.New(rand.NewPCG(7, 7))
	if opts.Rand == nil {
		opts.Rand = rng
	}
	opts.Now = func() time.Time { return fixedNow }

	return NewMachine(Deps{
		Extractor: skills.NewExtractor(nil, zap.NewNop()),
		Selector:  questions.NewSelector(questions.DefaultCatalog(), rng),
		Scorer:    scorer,
		Reporter:  reporter,
		History:   NewHistory(),
	}, opts, zap.NewNop())
}

// step runs one turn and checks the question index invariant.
func step(t *testing.T, m *Machine, sess *Session, input string) (*Session, Reply) {
	t.Helper()
	sess, out := m.Handle(context.Background(), sess, input)

	require.GreaterOrEqual(t, sess.Index, 0)
	require.LessOrEqual(t, sess.Index, len(sess.Questions))
	require.Equal(t, len(sess.Answers), sess.Index)
	if sess.State == StateComplete {
		require.Equal(t, len(sess.Questions), sess.Index)
	} else if sess.State == StateInterview {
		require.Less(t, sess.Index, len(sess.Questions))
	}
	return sess, out
}

func TestNameCaptureThenResume(t *testing.T) {
	m := newTestMachine(t, &fixedScorer{scores: []int{80}}, nil, Options{})
	sess, greeting := m.Start()
	assert.NotEmpty(t, greeting.String())

	sess, out := step(t, m, sess, "Ada Lovelace")
	assert.Equal(t, StateAwaitingResume, sess.State)
	assert.Equal(t, "Ada Lovelace", sess.CandidateName)
	assert.Equal(t, "Hi Ada Lovelace! Please upload or paste your resume.", out.String())

	sess, out = step(t, m, sess, "Proficient in Python and AWS")
	assert.Equal(t, StateConfirmSkills, sess.State)
	assert.Equal(t, []string{"python"}, sess.Skills.Get("programming"))
	assert.Equal(t, []string{"aws"}, sess.Skills.Get("cloud"))
	assert.Contains(t, out.String(), "Programming: python\nCloud: aws")
	assert.Contains(t, out.String(), "Matched 'python' in:")
	assert.Contains(t, out.String(), confirmSkillsPrompt)
}

func TestShortTextAfterFirstTurnIsResume(t *testing.T) {
	m := newTestMachine(t, &fixedScorer{scores: []int{80}}, nil, Options{})
	sess, _ := m.Start()

	sess, out := step(t, m, sess, "")
	assert.Equal(t, StateAwaitingResume, sess.State)
	assert.NotEmpty(t, out.Messages)

	sess, out = step(t, m, sess, "knows cooking")
	assert.Empty(t, sess.CandidateName)
	assert.Equal(t, StateManualSkills, sess.State)
	assert.Equal(t, noSkillsPrompt, out.String())
}

func TestManualSkills(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  skills.SkillMap
	}{
		{
			name:  "listed skills",
			input: "I know Java and Docker",
			want: skills.SkillMap{
				{Name: "programming", Skills: []string{"java"}},
				{Name: "cloud", Skills: []string{"docker"}},
			},
		},
		{
			name:  "nothing recognised",
			input: "nothing relevant",
			want:  defaultSkills,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMachine(t, &fixedScorer{scores: []int{80}}, nil, Options{})
			sess, _ := m.Start()
			sess, _ = step(t, m, sess, "I am a chef with many years in kitchens")
			require.Equal(t, StateManualSkills, sess.State)

			sess, out := step(t, m, sess, tc.input)
			assert.Equal(t, StateConfirmSkills, sess.State)
			assert.Equal(t, tc.want, sess.Skills)
			assert.Contains(t, out.String(), "Type 'start interview' to begin.")
		})
	}
}

func TestConfirmSkillsMergesAdditively(t *testing.T) {
	m := newTestMachine(t, &fixedScorer{scores: []int{80}}, nil, Options{})
	sess, _ := m.Start()
	sess, _ = step(t, m, sess, "Experience with Python and Git.")

	sess, out := step(t, m, sess, "also worked with Redis and Python")
	assert.Equal(t, StateConfirmSkills, sess.State)
	assert.Equal(t, skillsUpdated, out.Messages[0])
	assert.Equal(t, skills.SkillMap{
		{Name: "programming", Skills: []string{"python"}},
		{Name: "tools", Skills: []string{"git"}},
		{Name: "databases", Skills: []string{"redis"}},
	}, sess.Skills)

	sess, out = step(t, m, sess, "hmm")
	assert.Equal(t, StateConfirmSkills, sess.State)
	assert.Equal(t, awaitingStart, out.String())
	assert.Len(t, sess.Skills.Flatten(), 3)
}

func TestStartInterviewPrefersSkillBank(t *testing.T) {
	m := newTestMachine(t, &fixedScorer{scores: []int{80}}, nil, Options{MaxQuestions: 3})
	sess, _ := m.Start()
	sess, _ = step(t, m, sess, "Experience: Python scripting for data pipelines")
	require.Equal(t, skills.SkillMap{{Name: "programming", Skills: []string{"python"}}}, sess.Skills)

	sess, out := step(t, m, sess, "Start Interview")
	require.Equal(t, StateInterview, sess.State)
	require.Len(t, sess.Questions, 3)

	python := 0
	for _, q := range sess.Questions {
		if q.Skill == "python" {
			python++
		}
	}
	assert.Equal(t, 2, python)
	assert.Contains(t, out.String(), "Question 1: "+sess.Questions[0].Text)
	assert.Zero(t, sess.Progress())
}

func TestFullInterviewAndCompletion(t *testing.T) {
	scorer := &fixedScorer{scores: []int{90, 80}}
	reporter := &stubReporter{path: "/tmp/report.pdf"}
	m := newTestMachine(t, scorer, reporter, Options{MaxQuestions: 3, Recipient: "ada@example.com"})

	sess, _ := m.Start()
	sess, _ = step(t, m, sess, "Ada")
	sess, _ = step(t, m, sess, "Skilled in SQL and using AWS daily")
	sess, _ = step(t, m, sess, "yes")
	require.Len(t, sess.Questions, 3)

	sess, out := step(t, m, sess, "first answer")
	assert.Equal(t, StateInterview, sess.State)
	assert.InDelta(t, 1.0/3.0, sess.Progress(), 1e-9)
	require.Len(t, out.Messages, 2)
	assert.Contains(t, out.Messages[0], "Score: 90/100")
	assert.Contains(t, out.Messages[0], "Improve:\n- concept")
	assert.Contains(t, out.Messages[1], "Question 2: "+sess.Questions[1].Text)

	sess, _ = step(t, m, sess, "second answer")
	sess, out = step(t, m, sess, "")

	require.Equal(t, StateComplete, sess.State)
	assert.Equal(t, 1.0, sess.Progress())
	assert.Contains(t, out.String(), "Score: 0/100")
	assert.Contains(t, out.String(), "Overall score: 56.7/100")
	assert.Contains(t, out.String(), "Rating: Average")

	records := m.History().Records()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "Ada", rec.CandidateName)
	assert.Equal(t, "2025-03-14 09:26", rec.DateString())
	assert.InDelta(t, (90.0+80.0+0.0)/3.0, rec.AvgScore, 1e-9)
	assert.Equal(t, RatingAverage, rec.Rating())
	assert.Equal(t, sess.Questions[2].ExpectedKeywords, rec.Answers[2].Evaluation.MissingConcepts)

	_, out = step(t, m, sess, "review my answers")
	review := out.String()
	last := -1
	for i, q := range sess.Questions {
		idx := strings.Index(review, q.Text)
		require.Greater(t, idx, last, "question %d out of order", i+1)
		last = idx
	}
	assert.Contains(t, review, "Answer: first answer\nScore: 90/100\nFeedback: feedback first answer")
	assert.Contains(t, review, "Answer: second answer\nScore: 80/100")
	assert.Contains(t, review, "Answer: \nScore: 0/100\nFeedback: No answer provided.")

	_, out = step(t, m, sess, "export pdf")
	assert.Equal(t, "PDF ready: /tmp/report.pdf", out.String())
	require.NotNil(t, reporter.exported)
	assert.Equal(t, sess.ID, reporter.exported.SessionID)

	_, out = step(t, m, sess, "send email")
	assert.Equal(t, "Results sent to ada@example.com!", out.String())
	assert.Equal(t, "ada@example.com", reporter.sentTo)

	_, out = step(t, m, sess, "show history")
	assert.Contains(t, out.String(), "Interview 1: Ada (2025-03-14 09:26)")
	assert.Contains(t, out.String(), "Rating: Average")

	_, out = step(t, m, sess, "what now?")
	assert.Contains(t, out.String(), "1. Review answers")

	fresh, out := step(t, m, sess, "new interview")
	assert.Equal(t, StateAwaitingResume, fresh.State)
	assert.NotEqual(t, sess.ID, fresh.ID)
	assert.Empty(t, fresh.Questions)
	assert.NotEmpty(t, out.String())
	assert.Equal(t, 1, m.History().Len())
}

func TestCompletionReportFailures(t *testing.T) {
	reporter := &stubReporter{exportErr: errors.New("disk full"), sendErr: errors.New("smtp down")}
	m := newTestMachine(t, &fixedScorer{scores: []int{100}}, reporter, Options{MaxQuestions: 3, Recipient: "x@example.com"})
	sess := finishedSession(t, m)

	_, out := step(t, m, sess, "pdf")
	assert.Equal(t, "PDF generation error: disk full", out.String())

	_, out = step(t, m, sess, "email")
	assert.Equal(t, emailFailed, out.String())
	assert.Equal(t, StateComplete, sess.State)
}

func TestCompletionWithoutRecipientOrReporter(t *testing.T) {
	m := newTestMachine(t, &fixedScorer{scores: []int{100}}, nil, Options{MaxQuestions: 3})
	sess := finishedSession(t, m)

	_, out := step(t, m, sess, "send")
	assert.Equal(t, noRecipient, out.String())

	_, out = step(t, m, sess, "export")
	assert.Equal(t, noReporter, out.String())

	rec := sess.Record
	require.NotNil(t, rec)
	assert.Equal(t, "Candidate", rec.CandidateName)
	assert.Equal(t, RatingExcellent, rec.Rating())
}

func TestHistoryIsIsolatedFromSession(t *testing.T) {
	m := newTestMachine(t, &fixedScorer{scores: []int{70}}, nil, Options{MaxQuestions: 3})
	sess := finishedSession(t, m)

	sess.Answers[0].Answer = "tampered"
	sess.Skills[0].Skills[0] = "tampered"
	sess.Record.Answers[0].Evaluation.MissingConcepts[0] = "tampered"

	rec := m.History().Records()[0]
	assert.NotEqual(t, "tampered", rec.Answers[0].Answer)
	assert.NotEqual(t, "tampered", rec.Skills[0].Skills[0])
	assert.NotEqual(t, "tampered", rec.Answers[0].Evaluation.MissingConcepts[0])
}

func TestIngestDocument(t *testing.T) {
	m := newTestMachine(t, &fixedScorer{scores: []int{70}}, nil, Options{})
	sess, _ := m.Start()

	out := m.IngestDocument(sess, "   ")
	assert.Equal(t, emptyDocument, out.String())
	assert.Equal(t, StateAwaitingResume, sess.State)

	out = m.IngestDocument(sess, "Summary\nSkills: Java, Spring, Jenkins\n")
	assert.Equal(t, StateConfirmSkills, sess.State)
	assert.Contains(t, out.String(), "Frameworks: spring")

	out = m.IngestDocument(sess, "Skills: Ruby")
	assert.Equal(t, documentNotExpected, out.String())
	assert.Equal(t, []string{"java"}, sess.Skills.Get("programming"))
}

func TestEmptyQuestionSetCompletesImmediately(t *testing.T) {
	empty, err := questions.ParseCatalog([]byte("skills: {}\n"))
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 1))
	m := NewMachine(Deps{
		Selector: questions.NewSelector(empty, rng),
		Scorer:   &fixedScorer{scores: []int{50}},
	}, Options{Rand: rng, MaxQuestions: 5}, nil)

	sess, _ := m.Start()
	sess, _ = step(t, m, sess, "Proficient in Python for many years")
	sess, out := step(t, m, sess, "ready")

	assert.Equal(t, StateComplete, sess.State)
	assert.Zero(t, sess.Progress())
	assert.Contains(t, out.String(), noQuestions)
	assert.Contains(t, out.String(), "Overall score: 0.0/100")
	assert.Equal(t, 1, m.History().Len())
}

func TestMaxQuestionsIsClamped(t *testing.T) {
	assert.Equal(t, DefaultMaxQuestions, NewMachine(Deps{}, Options{}, nil).maxQuestions)
	assert.Equal(t, MinQuestions, NewMachine(Deps{}, Options{MaxQuestions: 1}, nil).maxQuestions)
	assert.Equal(t, MaxQuestions, NewMachine(Deps{}, Options{MaxQuestions: 50}, nil).maxQuestions)
}

func finishedSession(t *testing.T, m *Machine) *Session {
	t.Helper()
	sess, _ := m.Start()
	sess, _ = step(t, m, sess, "Worked with Java and Jira on big projects")
	sess, _ = step(t, m, sess, "ready")
	for sess.State == StateInterview {
		sess, _ = step(t, m, sess, "an answer")
	}
	require.Equal(t, StateComplete, sess.State)
	return sess
}

func TestConfirmPhrasesMatchWholeWords(t *testing.T) {
	m := newTestMachine(t, &fixedScorer{scores: []int{80}}, nil, Options{})
	sess, _ := m.Start()
	sess, _ = step(t, m, sess, "Experience with Python and Git.")

	sess, out := step(t, m, sess, "I already know docker")
	assert.Equal(t, StateConfirmSkills, sess.State)
	assert.Equal(t, skillsUpdated, out.Messages[0])
	assert.Equal(t, []string{"docker"}, sess.Skills.Get("cloud"))

	sess, _ = step(t, m, sess, "Yes, let's go")
	assert.Equal(t, StateInterview, sess.State)
}
