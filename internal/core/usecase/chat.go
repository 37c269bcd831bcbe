package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/civicboard/docqa/internal/core/domain"
	"github.com/civicboard/docqa/internal/core/ports"
)

const answerSystemPrompt = `You are an assistant for a civic meetings dashboard.
Answer only from the document excerpts below. If the excerpts do not contain
the answer, say so directly instead of guessing. Mention page numbers when
the excerpts carry them.`

const passageDelimiter = "\n---\n"

// AnswerObserver receives retrieval facts for metrics. Optional.
type AnswerObserver interface {
	ObserveRetrieval(passages int)
}

type ChatUseCase struct {
	index        ports.ChunkIndex
	embedder     ports.Embedder
	completer    ports.CompletionClient
	topK         int
	historyLimit int
	observer     AnswerObserver
}

func NewChatUseCase(
	index ports.ChunkIndex,
	embedder ports.Embedder,
	completer ports.CompletionClient,
	topK int,
	historyLimit int,
	observer AnswerObserver,
) *ChatUseCase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &ChatUseCase{
		index:        index,
		embedder:     embedder,
		completer:    completer,
		topK:         topK,
		historyLimit: historyLimit,
		observer:     observer,
	}
}

func (uc *ChatUseCase) Answer(
	ctx context.Context,
	attachmentID string,
	history []domain.ChatMessage,
	question string,
) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.WrapError(domain.ErrEmptyQuery, "answer", errors.New("question is blank"))
	}

	chunks, err := uc.index.ChunksWithEmbeddings(ctx, attachmentID)
	if err != nil {
		return "", fmt.Errorf("load chunk index: %w", err)
	}
	if len(chunks) == 0 {
		return "", domain.WrapError(
			domain.ErrNoExtractableText,
			"answer",
			fmt.Errorf("attachment %s has no extractable text", attachmentID),
		)
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	passages := RetrieveTopK(chunks, queryVector, uc.topK)
	if uc.observer != nil {
		uc.observer.ObserveRetrieval(len(passages))
	}

	messages := make([]domain.ChatMessage, 0, uc.historyLimit+2)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: answerSystemPrompt + "\n\nExcerpts:\n" + groundingContext(passages),
	})
	messages = append(messages, domain.TrailingDialogue(history, uc.historyLimit)...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: question})

	answer, err := uc.completer.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

func groundingContext(passages []domain.Passage) string {
	var b strings.Builder
	for i, p := range passages {
		if i > 0 {
			b.WriteString(passageDelimiter)
		}
		if p.Page > 0 {
			fmt.Fprintf(&b, "[Page %d] ", p.Page)
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
