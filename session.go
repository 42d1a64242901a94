package nasc

import (
	"reflect"
	"strings"
)

// session carries the state of one top-level resolution: the Resolution
// Path used for cycle detection and the instances it added to the cache.
// A session is used by a single call tree and is never shared.
type session struct {
	path     []reflect.Type
	caching  bool
	inserted []reflect.Type
}

func newSession(caching bool) *session {
	return &session{caching: caching}
}

func (s *session) push(t reflect.Type) {
	s.path = append(s.path, t)
}

func (s *session) pop() {
	s.path = s.path[:len(s.path)-1]
}

func (s *session) onPath(t reflect.Type) bool {
	for _, p := range s.path {
		if p == t {
			return true
		}
	}
	return false
}

func (s *session) depth() int {
	return len(s.path)
}

// cycle builds the error for a cycle closed by t at site.
func (s *session) cycle(t reflect.Type, site string) *CircularDependencyError {
	names := make([]string, 0, len(s.path)+1)
	for _, p := range s.path {
		names = append(names, p.String())
	}
	names = append(names, t.String())
	return &CircularDependencyError{Path: names, Site: site}
}

// siteName formats an edge for errors and logs.
func siteName(owner reflect.Type, member string) string {
	var b strings.Builder
	b.WriteString(owner.String())
	b.WriteByte('.')
	b.WriteString(member)
	return b.String()
}
