package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/civicboard/docqa/internal/core/domain"
	"github.com/civicboard/docqa/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible API for embeddings and chat
// completions. Response schemas are explicit structs; a response missing
// a required field fails fast instead of being optional-chained into
// silence.
type Client struct {
	baseURL    string
	apiKey     string
	embedModel string
	chatModel  string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, embedModel, chatModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		embedModel: embedModel,
		chatModel:  chatModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

func (c *Client) call(ctx context.Context, operation, path string, payload, out any) error {
	request := func(ctx context.Context) error {
		return c.postJSON(ctx, path, payload, out, operation)
	}
	if c.executor == nil {
		return request(ctx)
	}
	return c.executor.Execute(ctx, "openai."+operation, request, classifyAPIError)
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, order-preserving. The API is
// allowed to reorder items; the index field restores input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var response embeddingsResponse
	err := e.client.call(ctx, "embed", "/v1/embeddings", embeddingsRequest{
		Model: e.client.embedModel,
		Input: texts,
	}, &response)
	if err != nil {
		return nil, wrapCollaboratorError(domain.ErrEmbedding, "embed", err)
	}

	if len(response.Data) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrEmbedding,
			"embed",
			fmt.Errorf("response has %d embeddings for %d inputs", len(response.Data), len(texts)),
		)
	}

	vectors := make([][]float32, len(texts))
	for _, item := range response.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, domain.WrapError(domain.ErrEmbedding, "embed",
				fmt.Errorf("embedding index %d out of range", item.Index))
		}
		if len(item.Embedding) == 0 {
			return nil, domain.WrapError(domain.ErrEmbedding, "embed",
				fmt.Errorf("empty embedding at index %d", item.Index))
		}
		vectors[item.Index] = item.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, domain.WrapError(domain.ErrEmbedding, "embed",
				fmt.Errorf("missing embedding for input %d", i))
		}
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed query", errors.New("empty embedding result"))
	}
	return vectors[0], nil
}

type Completer struct {
	client *Client
}

func NewCompleter(client *Client) *Completer {
	return &Completer{client: client}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete returns the first choice's content verbatim.
func (g *Completer) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	payload := chatRequest{
		Model:    g.client.chatModel,
		Messages: make([]chatMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		payload.Messages = append(payload.Messages, chatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	var response chatResponse
	if err := g.client.call(ctx, "complete", "/v1/chat/completions", payload, &response); err != nil {
		return "", wrapCollaboratorError(domain.ErrCompletion, "complete", err)
	}
	if len(response.Choices) == 0 {
		return "", domain.WrapError(domain.ErrCompletion, "complete", errors.New("response has no choices"))
	}
	return response.Choices[0].Message.Content, nil
}
