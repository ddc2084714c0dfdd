package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fadilmartias/cv-batch-analyzer/internal/config"
	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	engineWorkflow = "hr_insights"
	engineName     = "engine"
)

type EngineServiceInterface interface {
	Submit(ctx context.Context, req model.EvaluationRequest) model.EvaluationResult
	SubmitFeedback(ctx context.Context, event model.FeedbackEvent) error
}

// EngineService talks to the remote evaluation engine. Transport failures are
// reported as EvaluationResult errors; nothing is retried or deduplicated here.
type EngineService struct {
	client       *resty.Client
	revisionID   string
	feedbackUser string
	breaker      *gobreaker.CircuitBreaker[*resty.Response]
	logger       *zap.Logger
}

type enginePrompt struct {
	RevisionID string `json:"revision_id"`
	Identifier string `json:"identifier"`
	Page1      string `json:"Page_1"`
}

type engineChatRequest struct {
	ThreadID         string `json:"thread_id"`
	ConversationFlow string `json:"conversation_flow"`
	UserPrompt       string `json:"user_prompt"`
}

type engineFeedbackRequest struct {
	ThreadID         string `json:"thread_id"`
	MessageID        string `json:"message_id"`
	UserID           string `json:"user_id"`
	PositiveFeedback bool   `json:"positive_feedback"`
}

func NewEngineService(cfg *config.EngineConfig, log *zap.Logger) *EngineService {
	log = logger.OrNop(log)
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.Username != "" || cfg.Password != "" {
		client.SetBasicAuth(cfg.Username, cfg.Password)
	}

	return &EngineService{
		client:       client,
		revisionID:   cfg.RevisionID,
		feedbackUser: cfg.FeedbackUser,
		breaker:      newBreaker[*resty.Response](engineName, log),
		logger:       log,
	}
}

func (s *EngineService) Submit(ctx context.Context, req model.EvaluationRequest) model.EvaluationResult {
	token := req.ConversationToken
	if token == "" {
		token = uuid.NewString()
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = uuid.NewString()[:8]
	}

	prompt, err := json.Marshal(enginePrompt{
		RevisionID: s.revisionID,
		Identifier: identifier,
		Page1:      req.Text,
	})
	if err != nil {
		return model.EvaluationErr(fmt.Sprintf("marshal engine prompt: %v", err))
	}

	s.logger.Debug("engine chat request",
		zap.String("identifier", identifier),
		zap.String("conversation_token", token),
		zap.Int("text_length", len(req.Text)),
	)

	resp, err := s.breaker.Execute(func() (*resty.Response, error) {
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(engineChatRequest{
				ThreadID:         token,
				ConversationFlow: engineWorkflow,
				UserPrompt:       string(prompt),
			}).
			Post("/chat")
		if err != nil {
			return nil, fmt.Errorf("engine chat request: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, statusError(engineName, "chat", resp)
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Warn("engine chat failed", zap.String("identifier", identifier), zap.Error(err))
		return model.EvaluationErr(err.Error())
	}

	return parseEngineEnvelope(resp.Body(), token)
}

// parseEngineEnvelope reads {thread_id, message_id, agent_response}. A non-string
// agent_response is kept as its raw JSON text.
func parseEngineEnvelope(body []byte, requestToken string) model.EvaluationResult {
	if !gjson.ValidBytes(body) {
		return model.EvaluationErr("engine returned a non-JSON response")
	}

	agent := gjson.GetBytes(body, "agent_response")
	if !agent.Exists() || agent.Type == gjson.Null {
		return model.EvaluationErr("engine response has no agent_response")
	}
	payload := agent.Raw
	if agent.Type == gjson.String {
		payload = agent.String()
	}

	token := gjson.GetBytes(body, "thread_id").String()
	if token == "" {
		token = requestToken
	}
	return model.EvaluationOk(payload, token, gjson.GetBytes(body, "message_id").String())
}

func (s *EngineService) SubmitFeedback(ctx context.Context, event model.FeedbackEvent) error {
	if event.MessageToken == "" || event.ConversationToken == "" {
		return errors.New("feedback requires both conversation and message tokens")
	}

	_, err := s.breaker.Execute(func() (*resty.Response, error) {
		resp, err := s.client.R().
			SetContext(ctx).
			SetPathParam("messageToken", event.MessageToken).
			SetBody(engineFeedbackRequest{
				ThreadID:         event.ConversationToken,
				MessageID:        event.MessageToken,
				UserID:           s.feedbackUser,
				PositiveFeedback: bool(event.Polarity),
			}).
			Put("/messages/{messageToken}/feedback")
		if err != nil {
			return nil, fmt.Errorf("engine feedback request: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, statusError(engineName, "feedback", resp)
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Warn("engine feedback failed", zap.String("message_token", event.MessageToken), zap.Error(err))
		return err
	}
	return nil
}
