package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/interview-coach/internal/logger"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

//go:embed schema.json
var responseSchema string

const (
	defaultMaxLogLength = 200
	defaultFeedback     = "No feedback."
)

var schemaLoader = gojsonschema.NewStringLoader(responseSchema)

// ModelGrader grades answers by prompting a language model for a JSON verdict.
type ModelGrader struct {
	generator ContentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewGrader(generator ContentGenerator, maxLogLength int, log *zap.Logger) *ModelGrader {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &ModelGrader{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

// Grade asks the model to score req. Any transport problem or malformed
// reply is returned as an error so the caller can switch strategies.
func (g *ModelGrader) Grade(ctx context.Context, req *Request) (*Assessment, error) {
	if req == nil {
		return nil, errors.New("grade request is required")
	}
	if g.generator == nil {
		return nil, errors.New("content generator is not configured")
	}

	prompt := buildPrompt(req)

	g.logger.Debug("generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.maxLogLen)),
	)

	raw, err := g.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, g.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(req *Request) string {
	concepts := "none"
	if len(req.ExpectedKeywords) > 0 {
		concepts = strings.Join(req.ExpectedKeywords, ", ")
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{QUESTION}}", strings.TrimSpace(req.Question))
	prompt = strings.ReplaceAll(prompt, "{{EXPECTED_CONCEPTS}}", concepts)
	// The answer goes in last so text inside it is never expanded.
	prompt = strings.ReplaceAll(prompt, "{{ANSWER}}", strings.TrimSpace(req.Answer))
	return prompt
}

func parseResponse(raw string) (*Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate model response: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("model response does not match schema: %s", strings.Join(problems, "; "))
	}

	var payload struct {
		Score           float64  `mapstructure:"score"`
		Feedback        string   `mapstructure:"feedback"`
		MissingConcepts []string `mapstructure:"missing_concepts"`
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err != nil {
		return nil, fmt.Errorf("build response decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}

	if math.IsNaN(payload.Score) || math.IsInf(payload.Score, 0) {
		return nil, fmt.Errorf("model returned a non-finite score")
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if feedback == "" {
		feedback = defaultFeedback
	}

	missing := payload.MissingConcepts
	if missing == nil {
		missing = []string{}
	}

	return &Assessment{
		Score:           math.Min(math.Max(payload.Score, 0), 100),
		Feedback:        feedback,
		MissingConcepts: missing,
	}, nil
}

// extractJSON strips markdown fences and any prose around the outermost
// JSON object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}
