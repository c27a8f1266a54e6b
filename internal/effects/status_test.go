package effects

import (
	"encoding/json"
	"testing"
)

func TestMediaURLExtraction(t *testing.T) {
	tests := []struct {
		name   string
		result string
		want   string
		ok     bool
	}{
		{"array first element", `[{"mediaUrl":"https://a/1.png"},{"mediaUrl":"https://a/2.png"}]`, "https://a/1.png", true},
		{"object media", `{"mediaUrl":"https://a/m.png","image":"https://a/i.png"}`, "https://a/m.png", true},
		{"video before image", `{"video":"https://a/v.mp4","image":"https://a/i.png"}`, "https://a/v.mp4", true},
		{"image only", `{"image":"https://a/i.png"}`, "https://a/i.png", true},
		{"empty object", `{}`, "", false},
		{"empty array", `[]`, "", false},
		{"null", `null`, "", false},
		{"missing", ``, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status := StatusResponse{Status: StatusCompleted, Result: json.RawMessage(tc.result)}
			got, ok := status.MediaURL()
			if got != tc.want || ok != tc.ok {
				t.Fatalf("MediaURL() = %q, %v; want %q, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestErrorTextShapes(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"quota exceeded"`, "quota exceeded"},
		{`{"message":"bad input"}`, "bad input"},
		{`null`, ""},
		{``, ""},
	}
	for _, tc := range tests {
		status := StatusResponse{Status: StatusFailed, Error: json.RawMessage(tc.raw)}
		if got := status.ErrorText(); got != tc.want {
			t.Fatalf("ErrorText(%s) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestFailedMatchesErrorStatus(t *testing.T) {
	for _, s := range []string{StatusFailed, StatusErrored, "FAILED", "Error"} {
		if !(&StatusResponse{Status: s}).Failed() {
			t.Fatalf("expected %q to be a failure", s)
		}
	}
	for _, s := range []string{StatusQueued, StatusProcessing, StatusCompleted} {
		if (&StatusResponse{Status: s}).Failed() {
			t.Fatalf("%q is not a failure", s)
		}
	}
}
