package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"github.com/abhinandc/ai-interview/internal/llm"
	"github.com/abhinandc/ai-interview/internal/models"
	"github.com/abhinandc/ai-interview/internal/prompts"
	"github.com/abhinandc/ai-interview/internal/utils"
)

// Client represents a Gemini LLM client

type Client struct {
	client  *genai.Client
	config  *Config
	prompts *prompts.PromptManager
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	pm, err := prompts.NewPromptManager()
	if err != nil {
		return nil, err
	}

	return &Client{
		client:  client,
		config:  config,
		prompts: pm,
	}, nil
}

// generate sends a prompt and returns the trimmed response text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		code := llm.ErrCodeServiceDown
		if isRateLimitError(err) {
			code = llm.ErrCodeRateLimit
		}
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     code,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}
	if result == nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeBadResponse,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeBadResponse,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	if text == "" {
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeBadResponse,
			Message:  "Empty response generated",
		}
	}
	return text, nil
}

// ScoreDimension evaluates the content on one rubric dimension.
func (c *Client) ScoreDimension(ctx context.Context, content string, dimension models.Dimension) (*models.DimensionResult, error) {
	prompt, err := c.prompts.BuildPrompt("score", map[string]string{
		"Dimension":   dimension.Name,
		"Description": dimension.Description,
		"MaxScore":    strconv.FormatFloat(dimension.MaxScore, 'f', -1, 64),
		"Content":     content,
	})
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Score      float64  `json:"score"`
		Confidence float64  `json:"confidence"`
		Evidence   []string `json:"evidence"`
	}
	if err := json.Unmarshal([]byte(utils.StripFences(text)), &parsed); err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeBadResponse,
			Message:  fmt.Sprintf("Failed to parse score response for dimension %s", dimension.Name),
			Err:      err,
		}
	}

	// Clamp out-of-range model output instead of failing the round.
	if parsed.Score < 0 {
		parsed.Score = 0
	}
	if parsed.Score > dimension.MaxScore {
		parsed.Score = dimension.MaxScore
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}

	return &models.DimensionResult{
		Dimension:  dimension.Name,
		Score:      parsed.Score,
		Confidence: parsed.Confidence,
		Evidence:   parsed.Evidence,
	}, nil
}

// GenerateFollowups suggests interviewer followup questions.
func (c *Client) GenerateFollowups(ctx context.Context, content string, scores models.DimensionScores, evidence models.EvidenceList) ([]string, error) {
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return nil, err
	}
	evidenceJSON, err := json.Marshal(evidence)
	if err != nil {
		return nil, err
	}

	prompt, err := c.prompts.BuildPrompt("followups", map[string]string{
		"Content":  content,
		"Scores":   string(scoresJSON),
		"Evidence": string(evidenceJSON),
	})
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleaned := utils.StripFences(text)
	var questions []string
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		// Some model outputs come back as a bulleted list instead of JSON.
		questions = splitLines(cleaned)
	}
	if len(questions) > 3 {
		questions = questions[:3]
	}
	return questions, nil
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}

func (c *Client) GetProviderName() string {
	return "gemini"
}
