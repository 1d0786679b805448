package ai

import "context"

// Request is a single interview answer to be graded.
type Request struct {
	Question         string
	Answer           string
	ExpectedKeywords []string
}

// Assessment is the grade returned by a language model.
type Assessment struct {
	Score           float64
	Feedback        string
	MissingConcepts []string
}

// Grader grades interview answers.
type Grader interface {
	Grade(ctx context.Context, req *Request) (*Assessment, error)
}

// ContentGenerator sends a prompt to a model and returns its text reply.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
