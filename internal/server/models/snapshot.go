package models

// Snapshot is the whole store state at one point in time. A Snapshot is never
// modified once published: mutations build a new Snapshot that shares the
// collections they did not touch.
type Snapshot struct {
	Fish        []Fish
	Users       []User
	Reports     []Report
	ResetTokens []PasswordResetToken
}

// EmptySnapshot returns a snapshot with four empty collections.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Fish:        []Fish{},
		Users:       []User{},
		Reports:     []Report{},
		ResetTokens: []PasswordResetToken{},
	}
}

// Normalize replaces nil collections with empty ones.
func (s *Snapshot) Normalize() *Snapshot {
	if s.Fish == nil {
		s.Fish = []Fish{}
	}
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Reports == nil {
		s.Reports = []Report{}
	}
	if s.ResetTokens == nil {
		s.ResetTokens = []PasswordResetToken{}
	}
	return s
}

func (s *Snapshot) WithFish(fish []Fish) *Snapshot {
	next := *s
	next.Fish = fish
	return &next
}

func (s *Snapshot) WithUsers(users []User) *Snapshot {
	next := *s
	next.Users = users
	return &next
}

func (s *Snapshot) WithReports(reports []Report) *Snapshot {
	next := *s
	next.Reports = reports
	return &next
}

func (s *Snapshot) WithResetTokens(tokens []PasswordResetToken) *Snapshot {
	next := *s
	next.ResetTokens = tokens
	return &next
}

// Replace returns a copy of items with items[i] set to v. The input slice is
// left untouched.
func Replace[T any](items []T, i int, v T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = v
	return out
}

// Append returns items with v appended, always in a fresh backing array so
// the input slice is never written to.
func Append[T any](items []T, v T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, v)
}

// Remove returns a copy of items without items[i].
func Remove[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
