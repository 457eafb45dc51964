package chat

import (
	"context"
	"errors"
	"testing"

	"docuchat/internal/ai"
	"docuchat/internal/session"
)

// scriptedModel answers with a fixed response and records what it was asked.
type scriptedModel struct {
	response string
	err      error

	lastSystem   string
	lastMessages []ai.ChatMessage
	calls        int
}

func (m *scriptedModel) Complete(ctx context.Context, system string, messages []ai.ChatMessage) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastMessages = messages
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestRewrite_EmptyHistoryIsNoOp(t *testing.T) {
	model := &scriptedModel{response: "should not be used"}
	r := NewRewriter(model)

	rw := r.Rewrite(context.Background(), "What is a binary search tree?", nil)
	if rw.Question != "What is a binary search tree?" {
		t.Fatalf("expected question unchanged, got %q", rw.Question)
	}
	if rw.Fallback {
		t.Fatal("no-op on empty history is the happy path, not a fallback")
	}
	if model.calls != 0 {
		t.Fatalf("expected no model call for empty history, got %d", model.calls)
	}
}

func TestRewrite_UsesLastThreeExchanges(t *testing.T) {
	model := &scriptedModel{response: "What is the height of a binary search tree?"}
	r := NewRewriter(model)

	history := make([]session.Turn, 0, 10)
	for i := 0; i < 5; i++ {
		history = append(history,
			session.Turn{Role: session.RoleUser, Text: "q"},
			session.Turn{Role: session.RoleAssistant, Text: "a"},
		)
	}

	rw := r.Rewrite(context.Background(), "What is its height?", history)
	if rw.Fallback {
		t.Fatal("expected happy-path rewrite")
	}
	if rw.Question != "What is the height of a binary search tree?" {
		t.Fatalf("unexpected rewritten question %q", rw.Question)
	}
	// 6 history turns of context plus the follow-up question itself.
	if len(model.lastMessages) != rewriteContextTurns+1 {
		t.Fatalf("expected %d messages sent to the model, got %d", rewriteContextTurns+1, len(model.lastMessages))
	}
	if model.lastSystem != rewriteInstruction {
		t.Fatal("expected the rewrite instruction as system prompt")
	}
}

func TestRewrite_FallsBackOnProviderFailure(t *testing.T) {
	model := &scriptedModel{err: errors.New("provider down")}
	r := NewRewriter(model)

	history := []session.Turn{
		{Role: session.RoleUser, Text: "What is a BST?"},
		{Role: session.RoleAssistant, Text: "A binary search tree is..."},
	}
	rw := r.Rewrite(context.Background(), "How do I delete from it?", history)
	if rw.Question != "How do I delete from it?" {
		t.Fatalf("expected original question on failure, got %q", rw.Question)
	}
	if !rw.Fallback {
		t.Fatal("expected fallback marker on provider failure")
	}
}

func TestRewrite_FallsBackOnEmptyOutput(t *testing.T) {
	model := &scriptedModel{response: "  \n"}
	r := NewRewriter(model)

	history := []session.Turn{{Role: session.RoleUser, Text: "hi"}}
	rw := r.Rewrite(context.Background(), "and then?", history)
	if rw.Question != "and then?" || !rw.Fallback {
		t.Fatalf("expected fallback to original question, got %+v", rw)
	}
}
