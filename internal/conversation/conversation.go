// Package conversation implements the Conversation Store and Memory
// Manager (component I): a process-wide, in-process mapping from
// conversation id to a bounded message history plus a cache of the
// most recent non-filter retrieval's results.
//
// There is no durable persistence: conversations live only as long as
// the process, and are lost on restart.
package conversation

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
)

// Role tags a conversation Message the way chatmodel.Role tags a chat
// completion turn. Kept as a distinct type since conversation history
// persists across requests while chatmodel.Message is per-call.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation history.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// DefaultMaxHistory is the default bounded message capacity.
const DefaultMaxHistory = 10

// DefaultMaxConversations bounds the Store's total live conversation
// count.
const DefaultMaxConversations = 500

// Memory is one conversation's bounded history and cached last
// results. Every method serializes on an internal mutex so concurrent
// requests against the same conversation id apply in arrival order.
type Memory struct {
	mu         sync.Mutex
	id         string
	maxHistory int
	messages   []Message
	lastResults []retrieval.SearchResultItem
	hasResults  bool
}

func newMemory(id string, maxHistory int) *Memory {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Memory{id: id, maxHistory: maxHistory}
}

// ID returns the conversation id this memory belongs to.
func (m *Memory) ID() string {
	return m.id
}

// AddExchange appends a user message then an assistant message,
// evicting the oldest messages (FIFO) until the total is within
// maxHistory.
func (m *Memory) AddExchange(userText, assistantText string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.messages = append(m.messages,
		Message{Role: RoleUser, Content: userText, Timestamp: now},
		Message{Role: RoleAssistant, Content: assistantText, Timestamp: now},
	)
	if overflow := len(m.messages) - m.maxHistory; overflow > 0 {
		m.messages = m.messages[overflow:]
	}
}

// Messages returns the ordered history, oldest first.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// Clear empties both history and cached results.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.lastResults = nil
	m.hasResults = false
}

// SetLastResults caches the most recent non-filter retrieval's
// results. A filter operation must never call this.
func (m *Memory) SetLastResults(items []retrieval.SearchResultItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastResults = append([]retrieval.SearchResultItem(nil), items...)
	m.hasResults = true
}

// GetLastResults returns the cached results and whether any are cached.
func (m *Memory) GetLastResults() ([]retrieval.SearchResultItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasResults {
		return nil, false
	}
	return append([]retrieval.SearchResultItem(nil), m.lastResults...), true
}

// HasResults reports whether a non-filter retrieval has been cached.
func (m *Memory) HasResults() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasResults
}

// ClearResults empties the cached results without touching history.
func (m *Memory) ClearResults() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastResults = nil
	m.hasResults = false
}

// Store is the process-wide conversation id → Memory mapping (component
// I). It is bounded by an LRU policy (hashicorp/golang-lru/v2, the
// same library used elsewhere in this codebase to bound a classifier
// cache) so a long-lived process's memory doesn't grow without limit.
// Not safe for cross-process sharing; within a process it is safe for
// concurrent use. GetOrCreate/Get/Delete/Len serialize on an internal mutex,
// and each Memory serializes its own mutations.
type Store struct {
	mu         sync.Mutex
	cache      *lru.Cache[string, *Memory]
	maxHistory int
}

// NewStore creates a Store bounded at maxConversations live
// conversations, each capped at maxHistory messages.
func NewStore(maxConversations, maxHistory int) (*Store, error) {
	if maxConversations <= 0 {
		maxConversations = DefaultMaxConversations
	}
	cache, err := lru.New[string, *Memory](maxConversations)
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache, maxHistory: maxHistory}, nil
}

// GetOrCreate returns the Memory for id, creating it lazily on first
// use.
func (s *Store) GetOrCreate(id string) *Memory {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mem, ok := s.cache.Get(id); ok {
		return mem
	}
	mem := newMemory(id, s.maxHistory)
	s.cache.Add(id, mem)
	return mem
}

// Get returns the Memory for id without creating it, and whether it
// existed.
func (s *Store) Get(id string) (*Memory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(id)
}

// Delete removes id's conversation entirely.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(id)
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
