package git

import (
	"strings"
	"time"
)

// shortSHALength is the number of characters kept in Commit.ShortSHA.
const shortSHALength = 8

// Commit is an immutable view of a single commit.
type Commit struct {
	SHA        string    `json:"sha"`
	ShortSHA   string    `json:"short_sha"`
	Message    string    `json:"-"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body,omitempty"`
	AuthorName string    `json:"author"`
	AuthoredAt time.Time `json:"authored_at"`
}

// NewCommit builds a Commit, splitting the message into subject and body
// on the first blank line.
func NewCommit(sha, message, authorName string, authoredAt time.Time) Commit {
	short := sha
	if len(short) > shortSHALength {
		short = short[:shortSHALength]
	}

	subject, body := message, ""
	if idx := strings.Index(message, "\n\n"); idx != -1 {
		subject = message[:idx]
		body = message[idx+2:]
	}

	return Commit{
		SHA:        sha,
		ShortSHA:   short,
		Message:    message,
		Subject:    subject,
		Body:       body,
		AuthorName: authorName,
		AuthoredAt: authoredAt,
	}
}

// FileChange represents a file touched by a commit.
type FileChange struct {
	Path    string     `json:"path"`
	OldPath string     `json:"old_path,omitempty"` // For renames
	Kind    ChangeKind `json:"kind"`
}

// ChangeKind represents the type of change.
type ChangeKind int

const (
	ChangeKindAdded ChangeKind = iota
	ChangeKindModified
	ChangeKindDeleted
	ChangeKindRenamed
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindAdded:
		return "added"
	case ChangeKindModified:
		return "modified"
	case ChangeKindDeleted:
		return "deleted"
	case ChangeKindRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Letter returns the single-letter status used by git.
func (k ChangeKind) Letter() string {
	switch k {
	case ChangeKindAdded:
		return "A"
	case ChangeKindDeleted:
		return "D"
	case ChangeKindRenamed:
		return "R"
	default:
		return "M"
	}
}
