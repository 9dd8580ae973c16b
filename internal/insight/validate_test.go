package insight

import (
	"strings"
	"testing"
)

func TestValidateRequestBounds(t *testing.T) {
	opts := DefaultValidationOptions()

	tests := []struct {
		name    string
		topic   string
		wantErr bool
		wantMsg string
	}{
		{name: "minimum length", topic: "abc", wantErr: false},
		{name: "typical topic", topic: "AI ethics", wantErr: false},
		{name: "maximum length", topic: strings.Repeat("a", 10000), wantErr: false},
		{name: "empty", topic: "", wantErr: true, wantMsg: "valid topic"},
		{name: "whitespace only", topic: "   \t\n", wantErr: true, wantMsg: "valid topic"},
		{name: "too short", topic: "ab", wantErr: true, wantMsg: "minimum 3"},
		{name: "too long", topic: strings.Repeat("a", 10001), wantErr: true, wantMsg: "10000"},
		{name: "multibyte counts runes", topic: "ИИ и этика", wantErr: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(AnalysisRequest{Topic: tt.topic}, opts)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ValidateRequest(%q) = %v, want nil", tt.topic, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateRequest(%q) = nil, want error", tt.topic)
			}
			se, ok := AsError(err)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if se.Kind != KindValidation {
				t.Fatalf("error kind = %q, want %q", se.Kind, KindValidation)
			}
			if se.Retryable() {
				t.Fatalf("validation errors must not be retryable")
			}
			if !strings.Contains(se.Message, tt.wantMsg) {
				t.Fatalf("error message %q does not contain %q", se.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidateRequestConfiguredBounds(t *testing.T) {
	opts := ValidationOptions{MinLength: 10, MaxLength: 20}

	if err := ValidateRequest(AnalysisRequest{Topic: "short"}, opts); err == nil {
		t.Fatal("expected error below configured minimum")
	} else if !strings.Contains(err.Error(), "10") {
		t.Fatalf("error %q should carry the configured minimum", err)
	}

	if err := ValidateRequest(AnalysisRequest{Topic: strings.Repeat("b", 25)}, opts); err == nil {
		t.Fatal("expected error above configured maximum")
	} else if !strings.Contains(err.Error(), "20") {
		t.Fatalf("error %q should carry the configured maximum", err)
	}

	if err := ValidateRequest(AnalysisRequest{Topic: strings.Repeat("b", 15)}, opts); err != nil {
		t.Fatalf("topic within configured bounds rejected: %v", err)
	}
}
