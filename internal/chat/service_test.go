package chat_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Zachkp/deskfolio/internal/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Generate(ctx context.Context, prompt chat.Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestService_Reply(t *testing.T) {
	provider := new(mockProvider)
	svc := chat.NewService(provider, chat.NewTranscripts(20), "be nice", nil)
	ctx := context.Background()

	provider.On("Generate", ctx, mock.MatchedBy(func(p chat.Prompt) bool {
		return p.System == "be nice" && p.Message == "Hi" && len(p.History) == 0
	})).Return("**Hello!**", nil).Once()

	resp, err := svc.Reply(ctx, chat.Request{Message: "  Hi  "})
	require.NoError(t, err)
	assert.Equal(t, "**Hello!**", resp.Response)
	assert.Contains(t, resp.HTML, "<strong>Hello!</strong>")
	assert.Equal(t, chat.DefaultSession, resp.SessionID)
	assert.False(t, resp.Fallback)

	history := svc.History("")
	require.Len(t, history, 2)
	assert.Equal(t, chat.RoleUser, history[0].Role)
	assert.Equal(t, "Hi", history[0].Content)
	assert.Equal(t, chat.RoleAssistant, history[1].Role)
	provider.AssertExpectations(t)
}

func TestService_ReplyUsesStoredHistory(t *testing.T) {
	provider := new(mockProvider)
	svc := chat.NewService(provider, nil, "", nil)
	ctx := context.Background()

	provider.On("Generate", ctx, mock.MatchedBy(func(p chat.Prompt) bool { return p.Message == "first" })).
		Return("one", nil).Once()
	provider.On("Generate", ctx, mock.MatchedBy(func(p chat.Prompt) bool {
		return p.Message == "second" && len(p.History) == 2 && p.History[1].Content == "one"
	})).Return("two", nil).Once()

	_, err := svc.Reply(ctx, chat.Request{Message: "first", SessionID: "s1"})
	require.NoError(t, err)
	_, err = svc.Reply(ctx, chat.Request{Message: "second", SessionID: "s1"})
	require.NoError(t, err)

	assert.Len(t, svc.History("s1"), 4)
	assert.Empty(t, svc.History("s2"))
	assert.Equal(t, 1, svc.Sessions())
	provider.AssertExpectations(t)
}

func TestService_ReplyProvidedHistoryReplaces(t *testing.T) {
	provider := new(mockProvider)
	svc := chat.NewService(provider, nil, "", nil)
	ctx := context.Background()

	provided := []chat.Entry{{Role: chat.RoleUser, Content: "from client"}}
	provider.On("Generate", ctx, mock.MatchedBy(func(p chat.Prompt) bool {
		return len(p.History) == 1 && p.History[0].Content == "from client"
	})).Return("ok", nil)

	_, err := svc.Reply(ctx, chat.Request{Message: "next", SessionID: "s1", History: provided})
	require.NoError(t, err)

	history := svc.History("s1")
	require.Len(t, history, 3)
	assert.Equal(t, "from client", history[0].Content)
}

func TestService_ReplyCapsTranscript(t *testing.T) {
	provider := new(mockProvider)
	svc := chat.NewService(provider, chat.NewTranscripts(20), "", nil)
	ctx := context.Background()
	provider.On("Generate", ctx, mock.Anything).Return("ack", nil)

	for i := range 21 {
		_, err := svc.Reply(ctx, chat.Request{Message: fmt.Sprintf("message %d", i), SessionID: "long"})
		require.NoError(t, err)
	}

	history := svc.History("long")
	require.Len(t, history, 20)
	assert.Equal(t, "message 11", history[0].Content)
	assert.Equal(t, "ack", history[19].Content)
}

func TestService_ReplyProviderFailure(t *testing.T) {
	provider := new(mockProvider)
	svc := chat.NewService(provider, nil, "", nil)
	ctx := context.Background()
	provider.On("Generate", ctx, mock.Anything).Return("", errors.New("quota exceeded"))

	resp, err := svc.Reply(ctx, chat.Request{Message: "Hi", SessionID: "s1"})
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	assert.Equal(t, chat.FallbackReply, resp.Response)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Empty(t, svc.History("s1"))
}

func TestService_ReplyNoProvider(t *testing.T) {
	svc := chat.NewService(nil, nil, "", nil)
	assert.False(t, svc.Configured())

	resp, err := svc.Reply(context.Background(), chat.Request{Message: "Hi"})
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
}

func TestService_ReplyEmptyMessage(t *testing.T) {
	provider := new(mockProvider)
	svc := chat.NewService(provider, nil, "", nil)

	_, err := svc.Reply(context.Background(), chat.Request{Message: "   "})
	require.ErrorIs(t, err, chat.ErrEmptyMessage)
	provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}
