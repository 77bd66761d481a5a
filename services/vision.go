package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// VisionVerdictKind enumerates the possible outcomes of the external vision
// call. Callers switch over the kind rather than checking ad hoc flags.
type VisionVerdictKind int

const (
	// VerdictRelevant: the image depicts a real civic issue and the model
	// returned a classification.
	VerdictRelevant VisionVerdictKind = iota
	// VerdictIrrelevant: the model explicitly rejected the evidence
	// (selfie, meme, food, etc). Treated as a routing failure so the
	// fallback classifier handles tagging instead of inventing a category.
	VerdictIrrelevant
	// VerdictUnavailable: call error, timeout or malformed response.
	VerdictUnavailable
)

// VisionVerdict is the tagged result of one vision inspection. Category,
// Severity and Keywords are only meaningful when Kind is VerdictRelevant;
// Err is only set when Kind is VerdictUnavailable.
type VisionVerdict struct {
	Kind     VisionVerdictKind
	Category string
	Severity string
	Keywords []string
	Err      error
}

// VisionClient inspects complaint evidence through an external model.
type VisionClient interface {
	Inspect(ctx context.Context, imageURL, description string) VisionVerdict
}

const visionPrompt = `TASK 1: Validate image relevance.
TASK 2: Classify the civic issue ONLY if relevant.

Rules:
- If the image does NOT show a real civic/public infrastructure issue, mark isRelevant=false.
- Do NOT guess.
- Reject selfies, animals, food, screenshots, private objects, memes, random photos.

Return ONLY valid JSON in this EXACT format:

{
  "isRelevant": true | false,
  "category": "garbage | road | drainage | lighting | null",
  "severity": "low | medium | high | null",
  "keywords": ["tag1", "tag2"]
}

Complaint description:
%q`

// OpenAIVisionClient calls an OpenAI-compatible chat-completions endpoint
// with the complaint description and evidence image.
type OpenAIVisionClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func NewOpenAIVisionClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIVisionClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIVisionClient{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// visionPayload is the JSON object the model is instructed to return.
type visionPayload struct {
	IsRelevant bool     `json:"isRelevant"`
	Category   string   `json:"category"`
	Severity   string   `json:"severity"`
	Keywords   []string `json:"keywords"`
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

func (c *OpenAIVisionClient) Inspect(ctx context.Context, imageURL, description string) VisionVerdict {
	reqBody := chatRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: []chatContent{{
					Type: "text",
					Text: "You are an AI used by municipal corporations to validate and classify civic complaints.",
				}},
			},
			{
				Role: "user",
				Content: []chatContent{
					{Type: "text", Text: fmt.Sprintf(visionPrompt, description)},
					{Type: "image_url", ImageURL: &chatImageURL{URL: imageURL}},
				},
			},
		},
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return VisionVerdict{Kind: VerdictUnavailable, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(encoded))
	if err != nil {
		return VisionVerdict{Kind: VerdictUnavailable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VisionVerdict{Kind: VerdictUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VisionVerdict{Kind: VerdictUnavailable, Err: fmt.Errorf("vision endpoint returned %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return VisionVerdict{Kind: VerdictUnavailable, Err: err}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return VisionVerdict{Kind: VerdictUnavailable, Err: err}
	}
	if len(parsed.Choices) == 0 {
		return VisionVerdict{Kind: VerdictUnavailable, Err: fmt.Errorf("vision response has no choices")}
	}

	// The model is told to return bare JSON but may wrap it in prose or a
	// code fence; extract the first object.
	raw := jsonObjectPattern.FindString(parsed.Choices[0].Message.Content)
	if raw == "" {
		return VisionVerdict{Kind: VerdictUnavailable, Err: fmt.Errorf("no JSON object in vision reply")}
	}

	var payload visionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return VisionVerdict{Kind: VerdictUnavailable, Err: err}
	}

	if !payload.IsRelevant {
		return VisionVerdict{Kind: VerdictIrrelevant}
	}

	return VisionVerdict{
		Kind:     VerdictRelevant,
		Category: payload.Category,
		Severity: payload.Severity,
		Keywords: payload.Keywords,
	}
}
