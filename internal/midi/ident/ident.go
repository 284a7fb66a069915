// Package ident builds device and source IDs from what a platform reports
// about an endpoint instead of where it sits in the listing, so sources keep
// their IDs when other devices are plugged or unplugged.
package ident

import (
	"fmt"
	"strings"
)

// Set hands out IDs that are unique within one listing. The zero value is
// ready to use; build a new Set for every listing.
type Set struct {
	seen map[string]int
}

// Next joins parts with ':' into an ID. Repeats of the same ID within the set
// get a "#n" suffix in listing order, so identical devices stay distinct.
func (s *Set) Next(parts ...string) string {
	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	id := strings.Join(parts, ":")
	s.seen[id]++
	if n := s.seen[id]; n > 1 {
		return fmt.Sprintf("%s#%d", id, n)
	}
	return id
}
