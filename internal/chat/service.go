// Package chat answers questions over the indexed documents, grounded in
// retrieved context and the session's conversation history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"docuchat/internal/ai"
	"docuchat/internal/session"
	"docuchat/internal/vectorindex"
)

const (
	DefaultTopK       = 10
	DefaultMaxSources = 3

	contextDelimiter = "\n\n---\n\n"
)

const answerInstruction = `You are a Data Structure and Algorithm Expert assistant.

You will be given a context of relevant information and a user question.
Your task is to answer the user's question based ONLY on the provided context.

Rules:
- If the answer is not in the context, say "I couldn't find that information in the uploaded documents."
- Keep answers clear, concise, and educational
- Always cite which document you're referencing when possible
- Use markdown formatting for better readability

Context:
%s`

// ErrGenerationFailed masks any internal failure during answer generation.
// The cause is logged for operators; callers only see this generic kind.
var ErrGenerationFailed = errors.New("failed to generate response")

// Answer is the result of one generate call.
type Answer struct {
	Text           string               `json:"response"`
	Sources        []vectorindex.Result `json:"sources"`
	RewrittenQuery string               `json:"transformedQuery"`
}

// QueryEmbedder is the slice of the embedding gateway the service needs.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type Service struct {
	store      session.Store
	rewriter   *Rewriter
	embedder   QueryEmbedder
	index      vectorindex.Index
	model      ai.LanguageModel
	topK       int
	maxSources int
}

func NewService(
	store session.Store,
	rewriter *Rewriter,
	embedder QueryEmbedder,
	index vectorindex.Index,
	model ai.LanguageModel,
	topK int,
) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{
		store:      store,
		rewriter:   rewriter,
		embedder:   embedder,
		index:      index,
		model:      model,
		topK:       topK,
		maxSources: DefaultMaxSources,
	}
}

func (s *Service) CreateSession(ctx context.Context) (string, error) {
	return s.store.Create(ctx)
}

func (s *Service) ClearSession(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// Generate answers the question for the given session: rewrite for
// retrieval, retrieve top-k chunks, build a grounded prompt with the raw
// question on top of the session history, and persist the exchange. Unknown
// sessions surface as session.ErrUnknownSession; every other failure is
// logged and masked as ErrGenerationFailed.
func (s *Service) Generate(ctx context.Context, question, sessionID string) (*Answer, error) {
	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrUnknownSession) {
			return nil, err
		}
		return nil, s.fail("fetch history", err)
	}

	rewrite := s.rewriter.Rewrite(ctx, question, history)

	queryVector, err := s.embedder.EmbedQuery(ctx, rewrite.Question)
	if err != nil {
		return nil, s.fail("embed query", err)
	}
	results, err := s.index.Query(ctx, queryVector, s.topK)
	if err != nil {
		return nil, s.fail("search index", err)
	}

	contextBlock := buildContextBlock(results)

	messages := toChatMessages(history)
	messages = append(messages, ai.ChatMessage{Role: ai.RoleUser, Content: question})

	answerText, err := s.model.Complete(ctx, fmt.Sprintf(answerInstruction, contextBlock), messages)
	if err != nil {
		return nil, s.fail("complete answer", err)
	}
	answerText = strings.TrimSpace(answerText)

	err = s.store.Append(ctx, sessionID,
		session.Turn{Role: session.RoleUser, Text: question},
		session.Turn{Role: session.RoleAssistant, Text: answerText},
	)
	if err != nil {
		return nil, s.fail("persist history", err)
	}

	sources := results
	if len(sources) > s.maxSources {
		sources = sources[:s.maxSources]
	}
	return &Answer{
		Text:           answerText,
		Sources:        sources,
		RewrittenQuery: rewrite.Question,
	}, nil
}

func (s *Service) fail(step string, err error) error {
	log.Printf("generate response failed at %s: %v", step, err)
	return ErrGenerationFailed
}

// buildContextBlock concatenates retrieved chunks with their source files,
// preserving retrieval order.
func buildContextBlock(results []vectorindex.Result) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Content + "\n[Source: " + r.FileName + "]"
	}
	return strings.Join(parts, contextDelimiter)
}
