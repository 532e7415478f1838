// Package session tracks per-user conversation state while a proof-of-shipment
// flow is in progress.
package session

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Session holds one user's in-flight answers. Answers preserve the order in
// which fields were asked, since the rendered receipt lists them in that order.
type Session struct {
	Carrier string
	Answers *orderedmap.OrderedMap[string, string]
}

// New creates an empty session for the given carrier.
func New(carrier string) *Session {
	return &Session{
		Carrier: carrier,
		Answers: orderedmap.New[string, string](),
	}
}

// Answered reports whether the field has already been captured.
func (s *Session) Answered(field string) bool {
	if s == nil || s.Answers == nil {
		return false
	}
	_, ok := s.Answers.Get(field)
	return ok
}

// SetAnswer records an answer for a field.
func (s *Session) SetAnswer(field, value string) {
	s.Answers.Set(field, value)
}

// Answer returns a captured answer, if present.
func (s *Session) Answer(field string) (string, bool) {
	if s == nil || s.Answers == nil {
		return "", false
	}
	return s.Answers.Get(field)
}

// AnswerMap flattens the answers into a plain map for template rendering.
func (s *Session) AnswerMap() map[string]string {
	out := make(map[string]string, s.Answers.Len())
	for pair := s.Answers.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// Store is the per-user session registry used by the conversation engine.
type Store interface {
	Get(userID int64) (*Session, bool)
	Put(userID int64, s *Session)
	Remove(userID int64)
}
