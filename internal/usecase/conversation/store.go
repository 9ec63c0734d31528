// Package conversation maintains token-budgeted chat histories per session.
package conversation

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ecoquerai/quer/internal/domain"
)

const (
	// DefaultMaxTokens is the conversation token budget when unconfigured.
	DefaultMaxTokens = 2048
	// DefaultSession is the session used when the caller sends no session id.
	DefaultSession = "default"
)

// entry is a stored message with its token cost precomputed at append time.
type entry struct {
	msg    domain.Message
	tokens int
}

// Store holds one bounded conversation per session. All access is serialized by
// a single mutex so concurrent requests cannot interleave appends and evictions.
type Store struct {
	mu        sync.Mutex
	maxTokens int
	sessions  map[string][]entry
	logger    *zap.Logger
}

// NewStore creates a conversation store with the given token budget.
func NewStore(maxTokens int, logger *zap.Logger) *Store {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Store{
		maxTokens: maxTokens,
		sessions:  make(map[string][]entry),
		logger:    logger,
	}
}

// MaxTokens returns the configured budget.
func (s *Store) MaxTokens() int { return s.maxTokens }

// Append adds a system-context/user-question pair to the session's history.
//
// The system context is checked against the budget first: if it alone exceeds
// MaxTokens the call returns domain.ErrContextTooLarge and the history is left
// untouched. After a successful append, the oldest messages are evicted from
// the front — regardless of role — until the running total fits the budget.
func (s *Store) Append(sessionID, systemContext, question string) error {
	ctxTokens := CountTokens(systemContext)
	if ctxTokens > s.maxTokens {
		return domain.ErrContextTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := normalizeSession(sessionID)
	msgs := append(s.sessions[id],
		entry{msg: domain.Message{Role: domain.RoleSystem, Content: systemContext}, tokens: ctxTokens},
		entry{msg: domain.Message{Role: domain.RoleUser, Content: question}, tokens: CountTokens(question)},
	)

	total := messagesTokens(msgs)
	evicted := 0
	for total > s.maxTokens && len(msgs) > 0 {
		total -= msgs[0].tokens
		msgs = msgs[1:]
		evicted++
	}
	s.sessions[id] = msgs

	if evicted > 0 {
		s.logger.Debug("Evicted conversation messages",
			zap.String("session", id),
			zap.Int("evicted", evicted),
			zap.Int("total_tokens", total),
		)
	}
	return nil
}

// Messages returns a snapshot copy of the session's conversation.
func (s *Store) Messages(sessionID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.sessions[normalizeSession(sessionID)]
	msgs := make([]domain.Message, len(entries))
	for i, e := range entries {
		msgs[i] = e.msg
	}
	return msgs
}

// TotalTokens returns the current estimated token count of the session.
func (s *Store) TotalTokens(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return messagesTokens(s.sessions[normalizeSession(sessionID)])
}

func normalizeSession(id string) string {
	if id == "" {
		return DefaultSession
	}
	return id
}
