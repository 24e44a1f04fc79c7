// Package topic names event types with dot-separated hierarchical tags and
// matches them against wildcard patterns.
//
//	counter.increment   - a concrete event type
//	todo.*              - exactly one segment below "todo"
//	todo.**             - zero or more segments below "todo"
package topic

import (
	"errors"
	"strings"
)

// Topic is a hierarchical event type such as "todo.item.added".
type Topic string

const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator separates topic segments.
	Separator = "."
)

// ErrInvalidTopic is returned by Validate for empty or malformed topics.
var ErrInvalidTopic = errors.New("invalid topic")

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split on the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Parent drops the last segment. "todo.item.added" -> "todo.item".
func (t Topic) Parent() Topic {
	idx := strings.LastIndex(string(t), Separator)
	if idx < 0 {
		return ""
	}
	return t[:idx]
}

// IsPattern reports whether the topic contains a wildcard segment.
func (t Topic) IsPattern() bool {
	for _, seg := range t.Segments() {
		if seg == WildcardSingle || seg == WildcardMulti {
			return true
		}
	}
	return false
}

// Validate rejects empty topics and topics with empty segments.
func (t Topic) Validate() error {
	if t == "" {
		return ErrInvalidTopic
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return ErrInvalidTopic
		}
	}
	return nil
}

// Matches reports whether t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	return match(t.Segments(), pattern.Segments())
}

// Match is the free-function form of Topic.Matches.
func Match(pattern, t Topic) bool {
	return t.Matches(pattern)
}

func match(topic, pattern []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]
		if head == WildcardMulti {
			rest := pattern[1:]
			for i := 0; i <= len(topic); i++ {
				if match(topic[i:], rest) {
					return true
				}
			}
			return false
		}
		if len(topic) == 0 {
			return false
		}
		if head != WildcardSingle && head != topic[0] {
			return false
		}
		topic, pattern = topic[1:], pattern[1:]
	}
	return len(topic) == 0
}

// Patterns is an immutable set of topic patterns.
type Patterns []Topic

// Any reports whether t matches at least one pattern. An empty set matches
// everything.
func (p Patterns) Any(t Topic) bool {
	if len(p) == 0 {
		return true
	}
	for _, pattern := range p {
		if t.Matches(pattern) {
			return true
		}
	}
	return false
}
