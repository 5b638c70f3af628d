package openai

import (
	"sync"

	"github.com/loomlite/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// OntologyOpenAIClient implements ai.OntologyAIClient against OpenAI-style
// APIs. It keeps separate clients for chat/completion and embedding
// endpoints, since deployments often route them to different hosts.
//
// Create it with NewOntologyOpenAIClient.
type OntologyOpenAIClient struct {
	completionModel string
	embeddingModel  string

	chatURL      string
	chatKey      string
	embeddingURL string
	embeddingKey string

	timeoutMin int64
	reqLock    *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewOntologyOpenAIClientParams configures a new OntologyOpenAIClient.
// CompletionModel is used for labels, summaries, and structured extraction;
// EmbeddingModel for vectors. URL fields may stay empty for the default
// OpenAI endpoint.
type NewOntologyOpenAIClientParams struct {
	CompletionModel string
	EmbeddingModel  string

	ChatURL      string
	ChatKey      string
	EmbeddingURL string
	EmbeddingKey string

	MaxConcurrentRequests int64
	TimeoutMinutes        int64
}

// NewOntologyOpenAIClient creates a client for the given endpoints. Requests
// across all methods share one concurrency semaphore.
func NewOntologyOpenAIClient(params NewOntologyOpenAIClientParams) *OntologyOpenAIClient {
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	timeoutMin := params.TimeoutMinutes
	if timeoutMin <= 0 {
		timeoutMin = 5
	}

	return &OntologyOpenAIClient{
		completionModel: params.CompletionModel,
		embeddingModel:  params.EmbeddingModel,

		chatURL:      params.ChatURL,
		chatKey:      params.ChatKey,
		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,

		timeoutMin: timeoutMin,
		reqLock:    semaphore.NewWeighted(maxConcurrent),

		metrics: ai.ModelMetrics{},

		ChatClient:      newOpenaiClient(params.ChatURL, params.ChatKey),
		EmbeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newOpenaiClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)
	return &client
}
