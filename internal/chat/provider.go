package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// PromptHistory is how many transcript entries accompany each message.
const PromptHistory = 10

// Prompt is everything a provider needs to answer one message.
type Prompt struct {
	System  string
	History []Entry
	Message string
}

// Recent returns the tail of the history sent to the provider.
func (p Prompt) Recent() []Entry {
	if len(p.History) > PromptHistory {
		return p.History[len(p.History)-PromptHistory:]
	}
	return p.History
}

// Flatten renders the prompt as one block of text, for providers without
// role-separated messages.
func (p Prompt) Flatten() string {
	var b strings.Builder
	b.WriteString(p.System)
	b.WriteString("\n\n")
	if recent := p.Recent(); len(recent) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, e := range recent {
			role := "Assistant"
			if e.Role == RoleUser {
				role = "User"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, e.Content)
		}
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(p.Message)
	return b.String()
}

// Provider generates an assistant reply.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from provider")
