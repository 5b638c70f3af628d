package ai

import (
	"testing"
)

type testPayload struct {
	Label string `json:"label"`
	Score float64 `json:"score"`
}

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    testPayload
		wantErr bool
	}{
		{
			"standard json",
			`{"label": "Billing", "score": 0.9}`,
			testPayload{Label: "Billing", Score: 0.9},
			false,
		},
		{
			"double encoded",
			`"{\"label\": \"Billing\", \"score\": 0.9}"`,
			testPayload{Label: "Billing", Score: 0.9},
			false,
		},
		{
			"malformed but repairable",
			`{label: "Billing", score: 0.9,}`,
			testPayload{Label: "Billing", Score: 0.9},
			false,
		},
		{
			"surrounding whitespace",
			"  {\"label\": \"Billing\", \"score\": 0.9}\n",
			testPayload{Label: "Billing", Score: 0.9},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testPayload
			err := UnmarshalFlexible(tt.input, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalFlexible() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("UnmarshalFlexible() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Billing Pipeline", "Billing Pipeline"},
		{`"Billing Pipeline"`, "Billing Pipeline"},
		{"  **Billing Pipeline**  ", "Billing Pipeline"},
		{"Billing Pipeline.\nIt covers invoices.", "Billing Pipeline"},
		{"'Billing Pipeline.'", "Billing Pipeline"},
		{"", ""},
		{"   \n", ""},
	}

	for _, tt := range tests {
		if got := SanitizeLabel(tt.in); got != tt.want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
