package detect

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tendant/sortbin/internal/metrics"
	"github.com/tendant/sortbin/pkg/recycling"
)

// DefaultVisionModel is used when no model is configured
const DefaultVisionModel = "gpt-4o-mini"

const visionPrompt = `You sort household waste. Identify the main object in the photo.
Answer with a JSON object only:
{"object": "<what it is>", "mainCategory": "<bin: recycling, compost, landfill or hazardous>", "subCategory": "<material: one of %s>"}`

// VisionDetector asks an OpenAI compatible vision model to classify images
type VisionDetector struct {
	api        *openai.Client
	model      string
	categories []string
}

// VisionConfig configures a VisionDetector
type VisionConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Categories []string
}

// NewVisionDetector creates a detector backed by a chat completion model
func NewVisionDetector(cfg VisionConfig) *VisionDetector {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultVisionModel
	}

	return &VisionDetector{
		api:        openai.NewClientWithConfig(clientCfg),
		model:      model,
		categories: cfg.Categories,
	}
}

// Detect sends the image inline and parses the model's JSON answer
func (v *VisionDetector) Detect(ctx context.Context, fileName string, data []byte) (*recycling.DetectionResult, error) {
	start := time.Now()
	result, err := v.detect(ctx, data)
	metrics.DetectDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Detections.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Detections.WithLabelValues("ok").Inc()
	return result, nil
}

func (v *VisionDetector) detect(ctx context.Context, data []byte) (*recycling.DetectionResult, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(data), base64.StdEncoding.EncodeToString(data))

	req := openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf(visionPrompt, strings.Join(v.categories, ", ")),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := v.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call vision model: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty model response", ErrInvalidResult)
	}

	return ParseResult([]byte(stripCodeFence(resp.Choices[0].Message.Content)))
}

// stripCodeFence removes a markdown fence some models wrap JSON in
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
