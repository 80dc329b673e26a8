package domain

import "strings"

// DefaultCategories is the allow-list used when none is configured
var DefaultCategories = []string{"Food", "Transport", "Utilities", "Entertainment", "Shopping", "Health", "Other"}

// CategorySet is the configurable allow-list of expense categories.
// New categories are added through configuration; storage keeps category as free text.
type CategorySet struct {
	names []string
	index map[string]struct{}
}

// NewCategorySet builds a set from names, trimming blanks and dropping duplicates.
// Order of first appearance is preserved.
func NewCategorySet(names []string) *CategorySet {
	s := &CategorySet{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := s.index[n]; dup {
			continue
		}
		s.index[n] = struct{}{}
		s.names = append(s.names, n)
	}
	return s
}

// Contains reports whether name is allowed. Matching is exact.
func (s *CategorySet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Names returns the allowed categories in configured order
func (s *CategorySet) Names() []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
