package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeneratorGenerateContent(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"score": 90,`, "", ` "feedback": "ok"}`)}
	g := newGenerator(fake, "")

	out, err := g.GenerateContent(context.Background(), "  grade this  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "{\"score\": 90,\n\"feedback\": \"ok\"}" {
		t.Fatalf("unexpected output: %q", out)
	}
	if fake.model != defaultModel || g.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", fake.model)
	}
	if fake.prompt != "grade this" {
		t.Fatalf("expected trimmed prompt, got %q", fake.prompt)
	}
	if fake.config == nil || fake.config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected json response mime type")
	}
}

func TestGeneratorErrors(t *testing.T) {
	cases := []struct {
		name   string
		models *fakeModels
		prompt string
	}{
		{name: "empty prompt", models: &fakeModels{resp: textResponse("x")}, prompt: "   "},
		{name: "api error", models: &fakeModels{err: errors.New("quota")}, prompt: "p"},
		{name: "nil response", models: &fakeModels{}, prompt: "p"},
		{name: "empty candidates", models: &fakeModels{resp: textResponse("  ")}, prompt: "p"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGenerator(tc.models, "gemini-custom")
			if _, err := g.GenerateContent(context.Background(), tc.prompt); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	var nilGen *Generator
	if _, err := nilGen.GenerateContent(context.Background(), "p"); err == nil {
		t.Fatalf("expected error for nil generator")
	}
	if nilGen.Model() != "" {
		t.Fatalf("expected empty model for nil generator")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
