package git

import (
	"testing"
	"time"
)

func TestNewCommit_SplitsMessage(t *testing.T) {
	when := time.Date(2025, 7, 3, 9, 13, 49, 0, time.UTC)

	tests := []struct {
		name        string
		message     string
		wantSubject string
		wantBody    string
	}{
		{name: "Subject only", message: "Add README", wantSubject: "Add README", wantBody: ""},
		{name: "Subject and body", message: "Fix parser\n\nHandles empty input.", wantSubject: "Fix parser", wantBody: "Handles empty input."},
		{name: "Multi paragraph body", message: "Refactor\n\nFirst.\n\nSecond.", wantSubject: "Refactor", wantBody: "First.\n\nSecond."},
		{name: "Single newline stays in subject", message: "Line one\nline two", wantSubject: "Line one\nline two", wantBody: ""},
		{name: "Empty", message: "", wantSubject: "", wantBody: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCommit("0123456789abcdef0123456789abcdef01234567", tt.message, "Ada", when)
			if c.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", c.Subject, tt.wantSubject)
			}
			if c.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", c.Body, tt.wantBody)
			}
			if c.Message != tt.message {
				t.Errorf("Message = %q, want %q", c.Message, tt.message)
			}
		})
	}
}

func TestNewCommit_ShortSHA(t *testing.T) {
	tests := []struct {
		sha  string
		want string
	}{
		{sha: "0123456789abcdef", want: "01234567"},
		{sha: "abc", want: "abc"},
		{sha: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.sha, func(t *testing.T) {
			if got := NewCommit(tt.sha, "m", "a", time.Time{}).ShortSHA; got != tt.want {
				t.Fatalf("ShortSHA = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChangeKind_String(t *testing.T) {
	tests := []struct {
		kind       ChangeKind
		wantString string
		wantLetter string
	}{
		{ChangeKindAdded, "added", "A"},
		{ChangeKindModified, "modified", "M"},
		{ChangeKindDeleted, "deleted", "D"},
		{ChangeKindRenamed, "renamed", "R"},
		{ChangeKind(99), "unknown", "M"},
	}

	for _, tt := range tests {
		t.Run(tt.wantString, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
			if got := tt.kind.Letter(); got != tt.wantLetter {
				t.Errorf("Letter() = %q, want %q", got, tt.wantLetter)
			}
		})
	}
}
