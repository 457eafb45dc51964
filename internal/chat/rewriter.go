package chat

import (
	"context"
	"log"
	"strings"

	"docuchat/internal/ai"
	"docuchat/internal/session"
)

// rewriteContextTurns is how much history the rewriter sees: the last 3
// exchanges.
const rewriteContextTurns = 6

const rewriteInstruction = `You are a query rewriting expert. Based on the provided chat history, rephrase the "Follow Up user Question" into a complete, standalone question that can be understood without the chat history. Only output the rewritten question and nothing else.`

// Rewrite carries a retrieval-ready standalone question. Fallback is set
// when the rewrite was skipped or failed and the original question is used
// as-is, so callers and tests can tell the two paths apart.
type Rewrite struct {
	Question string
	Fallback bool
}

// Rewriter turns a follow-up question plus recent history into a standalone
// question. Rewriting is best effort: it may degrade retrieval quality but
// never fails the pipeline.
type Rewriter struct {
	model ai.LanguageModel
}

func NewRewriter(model ai.LanguageModel) *Rewriter {
	return &Rewriter{model: model}
}

func (r *Rewriter) Rewrite(ctx context.Context, question string, history []session.Turn) Rewrite {
	if len(history) == 0 {
		// A first question is already standalone.
		return Rewrite{Question: question}
	}

	recent := history
	if len(recent) > rewriteContextTurns {
		recent = recent[len(recent)-rewriteContextTurns:]
	}

	messages := toChatMessages(recent)
	messages = append(messages, ai.ChatMessage{Role: ai.RoleUser, Content: question})

	rewritten, err := r.model.Complete(ctx, rewriteInstruction, messages)
	if err != nil {
		log.Printf("query rewrite failed, using original question: %v", err)
		return Rewrite{Question: question, Fallback: true}
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return Rewrite{Question: question, Fallback: true}
	}
	return Rewrite{Question: rewritten}
}

func toChatMessages(turns []session.Turn) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(turns))
	for _, t := range turns {
		role := ai.RoleUser
		if t.Role == session.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: t.Text})
	}
	return messages
}
