package ai

import (
	"context"
	"errors"
	"testing"
)

// stubAIClient records structured-output requests and replays canned model
// responses through the same parsing path the adapters use.
type stubAIClient struct {
	completion     string
	formatResponse string
	err            error

	formatName string
}

func (s *stubAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	return s.completion, s.err
}

func (s *stubAIClient) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...GenerateOption) error {
	s.formatName = name
	if s.err != nil {
		return s.err
	}
	return UnmarshalFlexible(s.formatResponse, out)
}

func (s *stubAIClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, nil
}

func (s *stubAIClient) ResetMetrics() {}

func (s *stubAIClient) GetMetrics() ModelMetrics { return ModelMetrics{} }

func TestClusterLabelStructuredOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "clean response",
			response: `{"label": "Billing Pipeline"}`,
			want:     "Billing Pipeline",
		},
		{
			name:     "label needs sanitizing",
			response: `{"label": "**\"Billing Pipeline\"**"}`,
			want:     "Billing Pipeline",
		},
		{
			name:     "malformed json is repaired",
			response: `{label: "Payments",}`,
			want:     "Payments",
		},
		{
			name:     "empty label fails",
			response: `{"label": ""}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAIClient{formatResponse: tt.response}
			client := NewLabelClient(stub)

			got, err := client.ClusterLabel(context.Background(), []string{"Invoice", "Payment", "Refund"})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got label %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ClusterLabel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ClusterLabel() = %q, want %q", got, tt.want)
			}
			if stub.formatName == "" {
				t.Error("expected a schema-constrained request, got none")
			}
		})
	}
}

func TestRefinementLabelStructuredOutput(t *testing.T) {
	stub := &stubAIClient{formatResponse: `{"label": "Refund Handling"}`}
	client := NewLabelClient(stub)

	got, err := client.RefinementLabel(context.Background(), "Billing Pipeline", []string{"Refund", "Chargeback"})
	if err != nil {
		t.Fatalf("RefinementLabel() error = %v", err)
	}
	if got != "Refund Handling" {
		t.Errorf("RefinementLabel() = %q, want %q", got, "Refund Handling")
	}
	if stub.formatName != "name_cluster_refinement" {
		t.Errorf("format name = %q, want %q", stub.formatName, "name_cluster_refinement")
	}
}

func TestLabelClientPropagatesErrors(t *testing.T) {
	stub := &stubAIClient{err: errors.New("model unavailable")}
	client := NewLabelClient(stub)

	if _, err := client.ClusterLabel(context.Background(), []string{"A"}); err == nil {
		t.Error("ClusterLabel() expected error, got nil")
	}
	if _, err := client.RefinementLabel(context.Background(), "Parent", []string{"A"}); err == nil {
		t.Error("RefinementLabel() expected error, got nil")
	}
}

func TestDocumentSummaryTrims(t *testing.T) {
	stub := &stubAIClient{completion: "  A short abstract.\n"}
	client := NewLabelClient(stub)

	got, err := client.DocumentSummary(context.Background(), "Report", "text")
	if err != nil {
		t.Fatalf("DocumentSummary() error = %v", err)
	}
	if got != "A short abstract." {
		t.Errorf("DocumentSummary() = %q, want %q", got, "A short abstract.")
	}
}
