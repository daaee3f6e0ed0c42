// Package history loads a branch's commit list and resolves user references
// to positions within it.
package history

// Snapshot is an immutable, oldest-first list of commit SHAs for one branch.
// A refresh produces a new Snapshot; existing ones are never updated.
type Snapshot struct {
	branch string
	shas   []string
	pos    map[string]int
}

// NewSnapshot builds a Snapshot from shas, oldest first. Duplicate entries
// keep their first position.
func NewSnapshot(branch string, shas []string) *Snapshot {
	s := &Snapshot{
		branch: branch,
		shas:   make([]string, 0, len(shas)),
		pos:    make(map[string]int, len(shas)),
	}
	for _, sha := range shas {
		if _, dup := s.pos[sha]; dup || sha == "" {
			continue
		}
		s.pos[sha] = len(s.shas)
		s.shas = append(s.shas, sha)
	}
	return s
}

// Branch returns the branch the snapshot was loaded from.
func (s *Snapshot) Branch() string { return s.branch }

// Len returns the number of commits.
func (s *Snapshot) Len() int { return len(s.shas) }

// Empty reports whether the branch had no commits.
func (s *Snapshot) Empty() bool { return len(s.shas) == 0 }

// At returns the SHA at position i.
func (s *Snapshot) At(i int) (string, bool) {
	if i < 0 || i >= len(s.shas) {
		return "", false
	}
	return s.shas[i], true
}

// IndexOf returns the position of sha.
func (s *Snapshot) IndexOf(sha string) (int, bool) {
	i, ok := s.pos[sha]
	return i, ok
}

// Contains reports whether sha is on the branch.
func (s *Snapshot) Contains(sha string) bool {
	_, ok := s.pos[sha]
	return ok
}

// First returns the root-most commit.
func (s *Snapshot) First() (string, bool) { return s.At(0) }

// Last returns the branch tip at load time.
func (s *Snapshot) Last() (string, bool) { return s.At(len(s.shas) - 1) }
