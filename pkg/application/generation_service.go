package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/ai"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
)

// Language selects the language the model must answer in.
type Language string

const (
	LanguageHebrew  Language = "he"
	LanguageEnglish Language = "en"
)

// ParseLanguage accepts the language codes and the UI's IL/EN switch values.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "he", "il":
		return LanguageHebrew, true
	case "en":
		return LanguageEnglish, true
	default:
		return "", false
	}
}

// Directive is the sentence appended to the system prompt.
func (l Language) Directive() string {
	if l == LanguageHebrew {
		return "You must respond **only in Hebrew**."
	}
	return "You must respond **only in English**."
}

// PromptSource supplies the current system prompt template.
type PromptSource interface {
	Template() string
}

// StaticPrompt is a PromptSource with a fixed text.
type StaticPrompt string

func (p StaticPrompt) Template() string { return string(p) }

const proposalSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["title", "description", "effort", "priority"],
    "properties": {
      "title": { "type": "string", "minLength": 1 },
      "description": { "type": "string" },
      "effort": { "type": "integer", "minimum": 1, "maximum": 99 },
      "priority": { "type": "integer", "minimum": 1, "maximum": 4 }
    }
  }
}`

var proposalSchemaLoader = gojsonschema.NewStringLoader(proposalSchemaJSON)

// MalformedResponseError means the model reply is not a list of proposals.
// Nothing is created from such a reply.
type MalformedResponseError struct {
	Reply   string
	Reasons []string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("model reply is not a valid proposal list: %s", strings.Join(e.Reasons, "; "))
}

// GenerationSettings are the model call parameters.
type GenerationSettings struct {
	Temperature float32
	MaxTokens   int
}

// GenerationService asks the completion provider to break a feature
// description into backlog item proposals.
type GenerationService struct {
	provider ai.Provider
	prompt   PromptSource
	settings GenerationSettings
	logger   *slog.Logger
}

func NewGenerationService(provider ai.Provider, prompt PromptSource, settings GenerationSettings, logger *slog.Logger) *GenerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationService{provider: provider, prompt: prompt, settings: settings, logger: logger}
}

// SystemPrompt renders the template followed by the language directive.
func (s *GenerationService) SystemPrompt(lang Language) string {
	return s.prompt.Template() + lang.Directive()
}

// GenerateProposals makes one completion call with the feature description as
// the user message and parses the reply. A reply that does not match the
// proposal schema fails with *MalformedResponseError.
func (s *GenerationService) GenerateProposals(ctx context.Context, featureDescription string, lang Language) ([]workitem.Proposal, error) {
	resp, err := s.provider.Complete(ctx, ai.CompletionRequest{
		System:      s.SystemPrompt(lang),
		Prompt:      featureDescription,
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("completion via %s: %w", s.provider.ID(), err)
	}

	s.logger.Info("completion received",
		"provider", s.provider.ID(),
		"model", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)

	proposals, err := ParseProposals(resp.Text)
	if err != nil {
		s.logger.Warn("completion reply rejected", "provider", s.provider.ID(), "error", err)
		s.logger.Debug("rejected completion reply", "reply", resp.Text)
		return nil, err
	}
	return proposals, nil
}

// ParseProposals validates a model reply against the proposal schema and
// decodes it. An optional markdown code fence around the JSON is ignored.
func ParseProposals(reply string) ([]workitem.Proposal, error) {
	payload := stripCodeFence(reply)
	if payload == "" {
		return nil, &MalformedResponseError{Reply: reply, Reasons: []string{"empty reply"}}
	}

	result, err := gojsonschema.Validate(proposalSchemaLoader, gojsonschema.NewStringLoader(payload))
	if err != nil {
		return nil, &MalformedResponseError{Reply: reply, Reasons: []string{err.Error()}}
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, &MalformedResponseError{Reply: reply, Reasons: reasons}
	}

	var proposals []workitem.Proposal
	if err := json.Unmarshal([]byte(payload), &proposals); err != nil {
		return nil, &MalformedResponseError{Reply: reply, Reasons: []string{err.Error()}}
	}
	return proposals, nil
}

func stripCodeFence(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
