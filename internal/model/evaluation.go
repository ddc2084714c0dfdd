package model

// EvaluationRequest is a single submission to the evaluation engine.
//
// ConversationToken is the join key between a result and later feedback; a
// token minted for one document must never be reused for another document.
type EvaluationRequest struct {
	Text              string
	Identifier        string
	ConversationToken string
}

// EvaluationResult is Ok (RawPayload plus tokens) or Err (Reason).
type EvaluationResult struct {
	RawPayload        string `json:"raw_payload,omitempty"`
	ConversationToken string `json:"conversation_token,omitempty"`
	MessageToken      string `json:"message_token,omitempty"`
	Reason            string `json:"reason,omitempty"`
	Failed            bool   `json:"failed"`
}

func EvaluationOk(rawPayload, conversationToken, messageToken string) EvaluationResult {
	return EvaluationResult{
		RawPayload:        rawPayload,
		ConversationToken: conversationToken,
		MessageToken:      messageToken,
	}
}

func EvaluationErr(reason string) EvaluationResult {
	return EvaluationResult{Reason: reason, Failed: true}
}

type Polarity bool

const (
	PolarityPositive Polarity = true
	PolarityNegative Polarity = false
)

// FeedbackEvent is fire-and-forget; it is not stored locally.
type FeedbackEvent struct {
	ConversationToken string
	MessageToken      string
	Polarity          Polarity
}
