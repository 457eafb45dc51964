package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemoryStore_CreateAndHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty session id")
	}

	history, err := store.History(ctx, id)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history for fresh session, got %d turns", len(history))
	}

	other, _ := store.Create(ctx)
	if other == id {
		t.Fatal("expected distinct session ids")
	}
}

func TestMemoryStore_AppendUnknownSession(t *testing.T) {
	store := NewMemoryStore()
	err := store.Append(context.Background(), "no-such-session", Turn{Role: RoleUser, Text: "hi"})
	if !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession, got %v", err)
	}
}

func TestMemoryStore_RetentionLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id, _ := store.Create(ctx)

	for i := 0; i < 25; i++ {
		err := store.Append(ctx, id,
			Turn{Role: RoleUser, Text: fmt.Sprintf("question %d", i)},
			Turn{Role: RoleAssistant, Text: fmt.Sprintf("answer %d", i)},
		)
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}

		history, err := store.History(ctx, id)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if len(history) > MaxTurns {
			t.Fatalf("retention exceeded: %d turns", len(history))
		}
		if len(history) > 0 && history[0].Role != RoleUser {
			t.Fatalf("history does not start with a user turn: %q", history[0].Role)
		}
	}

	history, _ := store.History(ctx, id)
	if len(history) != MaxTurns {
		t.Fatalf("expected exactly %d retained turns, got %d", MaxTurns, len(history))
	}
	if history[len(history)-1].Text != "answer 24" {
		t.Fatalf("expected newest turn retained, got %q", history[len(history)-1].Text)
	}
	if history[0].Text != "question 15" {
		t.Fatalf("expected oldest turns dropped first, got %q", history[0].Text)
	}
}

func TestTrimTurns_RealignsToUserTurn(t *testing.T) {
	// 21 turns: trimming to the last 20 lands on an assistant turn, so the
	// trim must also drop that turn to keep the sequence starting on a user.
	turns := make([]Turn, 0, MaxTurns+1)
	for i := 0; i < MaxTurns/2; i++ {
		turns = append(turns,
			Turn{Role: RoleUser, Text: "q"},
			Turn{Role: RoleAssistant, Text: "a"},
		)
	}
	turns = append(turns, Turn{Role: RoleUser, Text: "q-last"})

	trimmed := trimTurns(turns)
	if len(trimmed) != MaxTurns-1 {
		t.Fatalf("expected %d turns after realignment, got %d", MaxTurns-1, len(trimmed))
	}
	if trimmed[0].Role != RoleUser {
		t.Fatalf("expected trimmed history to start with a user turn, got %q", trimmed[0].Role)
	}
	if trimmed[len(trimmed)-1].Text != "q-last" {
		t.Fatalf("expected newest turn retained, got %q", trimmed[len(trimmed)-1].Text)
	}
}

func TestMemoryStore_ClearThenHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id, _ := store.Create(ctx)
	_ = store.Append(ctx, id, Turn{Role: RoleUser, Text: "hi"})

	if err := store.Clear(ctx, id); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := store.History(ctx, id); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession after clear, got %v", err)
	}
	// Clearing twice is fine.
	if err := store.Clear(ctx, id); err != nil {
		t.Fatalf("expected idempotent clear, got %v", err)
	}
}
