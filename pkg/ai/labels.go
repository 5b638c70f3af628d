package ai

import (
	"context"
	"fmt"
	"strings"
)

// labelResponse is the structured output shape for label requests.
type labelResponse struct {
	Label string `json:"label" jsonschema_description:"The generated label text, 2-4 words, title case"`
}

// LabelClient generates hierarchy node labels and document summaries through
// an OntologyAIClient. It satisfies the hierarchy engine's LabelProvider
// interface; the engine supplies timeouts and fallbacks, so methods here
// just propagate errors. Labels are requested as schema-constrained JSON so
// the model cannot pad them with explanations.
type LabelClient struct {
	client OntologyAIClient
}

// NewLabelClient wraps the given AI client.
func NewLabelClient(client OntologyAIClient) *LabelClient {
	return &LabelClient{client: client}
}

// ClusterLabel names a thematic cluster from a sample of its member labels.
func (l *LabelClient) ClusterLabel(ctx context.Context, memberLabels []string) (string, error) {
	prompt := fmt.Sprintf(ClusterLabelPrompt, strings.Join(memberLabels, ", "))

	var res labelResponse
	err := l.client.GenerateCompletionWithFormat(
		ctx,
		"name_concept_cluster",
		"Name a thematic group of concepts extracted from a document.",
		prompt,
		&res,
		WithTemperature(0.2),
	)
	if err != nil {
		return "", err
	}

	label := SanitizeLabel(res.Label)
	if label == "" {
		return "", fmt.Errorf("empty cluster label from model")
	}
	return label, nil
}

// RefinementLabel names a sub-theme within a cluster.
func (l *LabelClient) RefinementLabel(ctx context.Context, clusterLabel string, memberLabels []string) (string, error) {
	prompt := fmt.Sprintf(RefinementLabelPrompt, clusterLabel, strings.Join(memberLabels, ", "))

	var res labelResponse
	err := l.client.GenerateCompletionWithFormat(
		ctx,
		"name_cluster_refinement",
		"Name a sub-theme within a thematic group of document concepts.",
		prompt,
		&res,
		WithTemperature(0.2),
	)
	if err != nil {
		return "", err
	}

	label := SanitizeLabel(res.Label)
	if label == "" {
		return "", fmt.Errorf("empty refinement label from model")
	}
	return label, nil
}

// DocumentSummary writes a 2-3 sentence abstract for the document text. The
// summary is free prose, so it goes through the plain completion path.
func (l *LabelClient) DocumentSummary(ctx context.Context, title, text string) (string, error) {
	prompt := fmt.Sprintf(DocumentSummaryPrompt, title, text)

	summary, err := l.client.GenerateCompletion(ctx, prompt, WithTemperature(0.3))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}
