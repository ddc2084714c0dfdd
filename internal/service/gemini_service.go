package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fadilmartias/cv-batch-analyzer/internal/config"
	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	geminiName             = "gemini"
	geminiTemperature      = 0.7
	geminiRequestTimeout   = 90 * time.Second
	maxEmbeddingTextLength = 10000
)

type GeminiService struct {
	client         *genai.Client
	model          string
	embeddingModel string
	dimensions     int32
	requestTimeout time.Duration
	textBreaker    *gobreaker.CircuitBreaker[string]
	vectorBreaker  *gobreaker.CircuitBreaker[[]float32]
	logger         *zap.Logger
}

// NewGeminiService returns an unconfigured service when no API key is set.
func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig, log *zap.Logger) (*GeminiService, error) {
	log = logger.OrNop(log)
	s := &GeminiService{
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		dimensions:     cfg.EmbeddingDimensions,
		requestTimeout: cfg.RequestTimeout,
		textBreaker:    newBreaker[string](geminiName, log),
		vectorBreaker:  newBreaker[[]float32](geminiName+"_embedding", log),
		logger:         log,
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = geminiRequestTimeout
	}
	if cfg.APIKey == "" {
		return s, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *GeminiService) Name() string {
	return geminiName
}

func (s *GeminiService) Configured() bool {
	return s.client != nil
}

func (s *GeminiService) Summarize(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if !s.Configured() {
		return "", ErrSummarizerNotConfigured
	}
	if s.model == "" {
		return "", fmt.Errorf("model name cannot be empty")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	return s.textBreaker.Execute(func() (string, error) {
		timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()

		genConfig := &genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(geminiTemperature)),
		}
		if systemInstruction != "" {
			genConfig.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
		}

		result, err := s.client.Models.GenerateContent(timeoutCtx, s.model, genai.Text(prompt), genConfig)
		if err != nil {
			return "", fmt.Errorf("generate content failed: %w", err)
		}
		if err := validateGenerateResponse(result); err != nil {
			return "", fmt.Errorf("invalid response: %w", err)
		}
		return result.Text(), nil
	})
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if !s.Configured() {
		return nil, ErrSummarizerNotConfigured
	}
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if truncated, ok := truncateRunes(trimmedText, maxEmbeddingTextLength); ok {
		s.logger.Warn("embedding text exceeds recommended limit, truncating",
			zap.Int("length", utf8.RuneCountInString(trimmedText)),
		)
		trimmedText = truncated
	}

	return s.vectorBreaker.Execute(func() ([]float32, error) {
		timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()

		content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}
		var embedCfg *genai.EmbedContentConfig
		if s.dimensions > 0 {
			embedCfg = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(s.dimensions)}
		}
		result, err := s.client.Models.EmbedContent(timeoutCtx, s.embeddingModel, content, embedCfg)
		if err != nil {
			return nil, fmt.Errorf("generate embedding failed: %w", err)
		}
		embeddings, err := validateEmbeddingResponse(result)
		if err != nil {
			return nil, fmt.Errorf("invalid embedding response: %w", err)
		}
		return embeddings, nil
	})
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

// truncateRunes cuts s to at most limit runes and reports whether it did.
func truncateRunes(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	return string([]rune(s)[:limit]), true
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range embeddings {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return embeddings, nil
}
