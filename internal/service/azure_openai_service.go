package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/cv-batch-analyzer/internal/config"
	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	azureName        = "azure_openai"
	azureTemperature = 0.7
	azureMaxTokens   = 2000
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type AzureOpenAIService struct {
	client     *resty.Client
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *zap.Logger
}

func NewAzureOpenAIService(cfg *config.SummaryConfig, log *zap.Logger) *AzureOpenAIService {
	log = logger.OrNop(log)
	return &AzureOpenAIService{
		client: resty.New().
			SetTimeout(2*time.Minute).
			SetHeader("Content-Type", "application/json"),
		endpoint:   strings.TrimRight(cfg.AzureEndpoint, "/"),
		apiKey:     cfg.AzureKey,
		deployment: cfg.AzureDeploymentName,
		apiVersion: cfg.AzureAPIVersion,
		breaker:    newBreaker[string](azureName, log),
		logger:     log,
	}
}

func (s *AzureOpenAIService) Name() string {
	return azureName
}

func (s *AzureOpenAIService) Configured() bool {
	return s.endpoint != "" && s.apiKey != ""
}

func (s *AzureOpenAIService) Summarize(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if !s.Configured() {
		return "", ErrSummarizerNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt cannot be empty")
	}

	s.logger.Debug("azure openai request",
		zap.String("deployment", s.deployment),
		zap.Int("prompt_length", len(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, 200)),
	)

	return s.breaker.Execute(func() (string, error) {
		resp, err := s.client.R().
			SetContext(ctx).
			SetHeader("api-key", s.apiKey).
			SetPathParam("deployment", s.deployment).
			SetQueryParam("api-version", s.apiVersion).
			SetBody(chatCompletionRequest{
				Messages: []chatMessage{
					{Role: "system", Content: systemInstruction},
					{Role: "user", Content: prompt},
				},
				Temperature: azureTemperature,
				MaxTokens:   azureMaxTokens,
			}).
			Post(s.endpoint + "/openai/deployments/{deployment}/chat/completions")
		if err != nil {
			return "", fmt.Errorf("azure openai request: %w", err)
		}
		if !resp.IsSuccess() {
			return "", statusError(azureName, "chat completion", resp)
		}

		content := gjson.GetBytes(resp.Body(), "choices.0.message.content").String()
		if strings.TrimSpace(content) == "" {
			return "", errors.New("azure openai returned no completion content")
		}
		return content, nil
	})
}
