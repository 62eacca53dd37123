package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrEmptyMessage is returned for a request without message text.
var ErrEmptyMessage = errors.New("Message is required")

// FallbackReply is returned to the visitor when the provider fails.
const FallbackReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

type Request struct {
	Message   string  `json:"message"`
	SessionID string  `json:"sessionId"`
	History   []Entry `json:"history"`
}

type Response struct {
	Response  string    `json:"response"`
	HTML      string    `json:"html"`
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
	// Fallback is set when the reply is the canned apology.
	Fallback bool `json:"fallback,omitempty"`
}

// Service answers chat messages.
type Service struct {
	provider    Provider
	transcripts *Transcripts
	system      string
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a chat service. provider may be nil when no API key is
// configured; every reply is then the fallback.
func NewService(provider Provider, transcripts *Transcripts, system string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if transcripts == nil {
		transcripts = NewTranscripts(DefaultMaxHistory)
	}
	return &Service{
		provider:    provider,
		transcripts: transcripts,
		system:      system,
		logger:      logger,
		now:         time.Now,
	}
}

// Configured reports whether a provider is available.
func (s *Service) Configured() bool {
	return s.provider != nil
}

// Reply answers req.Message. History in the request, when present, replaces
// the stored transcript as context. Provider failures produce the fallback
// reply and leave the transcript untouched.
func (s *Service) Reply(ctx context.Context, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = DefaultSession
	}

	history := req.History
	if len(history) == 0 {
		history = s.transcripts.History(sessionID)
	}

	text, err := s.generate(ctx, Prompt{System: s.system, History: history, Message: message})
	if err != nil {
		s.logger.Error("chat provider failed", "session", sessionID, "error", err)
		return &Response{
			Response:  FallbackReply,
			HTML:      RenderHTML(FallbackReply),
			SessionID: sessionID,
			Timestamp: s.now(),
			Fallback:  true,
		}, nil
	}

	now := s.now()
	updated := append(append([]Entry{}, history...),
		Entry{Role: RoleUser, Content: message, Timestamp: now},
		Entry{Role: RoleAssistant, Content: text, Timestamp: now},
	)
	s.transcripts.Store(sessionID, updated)

	return &Response{
		Response:  text,
		HTML:      RenderHTML(text),
		SessionID: sessionID,
		Timestamp: now,
	}, nil
}

func (s *Service) generate(ctx context.Context, prompt Prompt) (string, error) {
	if s.provider == nil {
		return "", errors.New("chat provider not configured")
	}
	return s.provider.Generate(ctx, prompt)
}

// History returns the stored transcript of a session.
func (s *Service) History(sessionID string) []Entry {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	return s.transcripts.History(sessionID)
}

// Sessions returns how many sessions have a transcript.
func (s *Service) Sessions() int {
	return s.transcripts.Sessions()
}
