package conversation

import (
	"sync"
	"testing"

	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
)

// Given N_msg=4 and 3 prior exchanges (6 messages), AddExchange must
// evict messages 0 and 1 so the new pair occupies positions 2 and 3
// (§8 universal invariant, worked exactly as specified).
func TestMemory_AddExchange_EvictsOldestFIFO(t *testing.T) {
	m := newMemory("c1", 4)
	m.AddExchange("q1", "a1")
	m.AddExchange("q2", "a2")
	m.AddExchange("q3", "a3")

	msgs := m.Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "q2" || msgs[1].Content != "a2" {
		t.Fatalf("expected oldest pair evicted, got %+v", msgs)
	}
	if msgs[2].Content != "q3" || msgs[3].Content != "a3" {
		t.Fatalf("expected newest pair at positions 2,3, got %+v", msgs)
	}
}

func TestMemory_Clear_EmptiesHistoryAndResults(t *testing.T) {
	m := newMemory("c1", 10)
	m.AddExchange("q", "a")
	m.SetLastResults([]retrieval.SearchResultItem{{Name: "X"}})

	m.Clear()

	if len(m.Messages()) != 0 {
		t.Fatalf("expected empty history after Clear")
	}
	if m.HasResults() {
		t.Fatalf("expected no cached results after Clear")
	}
}

func TestMemory_CachedResults_RoundTrip(t *testing.T) {
	m := newMemory("c1", 10)
	if m.HasResults() {
		t.Fatalf("expected no results initially")
	}

	m.SetLastResults([]retrieval.SearchResultItem{{Name: "A"}, {Name: "B"}})
	if !m.HasResults() {
		t.Fatalf("expected results after SetLastResults")
	}

	got, ok := m.GetLastResults()
	if !ok || len(got) != 2 {
		t.Fatalf("expected 2 cached results, got %+v ok=%v", got, ok)
	}

	m.ClearResults()
	if m.HasResults() {
		t.Fatalf("expected no results after ClearResults")
	}
	if len(m.Messages()) != 0 {
		t.Fatalf("ClearResults must not touch history")
	}
}

func TestStore_GetOrCreate_IsLazyAndStable(t *testing.T) {
	s, err := NewStore(10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := s.Get("c1"); ok {
		t.Fatalf("expected no conversation before first use")
	}

	m1 := s.GetOrCreate("c1")
	m1.AddExchange("hi", "hello")

	m2 := s.GetOrCreate("c1")
	if m2 != m1 {
		t.Fatalf("expected the same Memory instance for repeated GetOrCreate")
	}
	if len(m2.Messages()) != 2 {
		t.Fatalf("expected history to persist across GetOrCreate calls")
	}
}

func TestStore_Delete(t *testing.T) {
	s, err := NewStore(10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.GetOrCreate("c1")

	if !s.Delete("c1") {
		t.Fatalf("expected Delete to report removal")
	}
	if _, ok := s.Get("c1"); ok {
		t.Fatalf("expected conversation gone after Delete")
	}
	if s.Delete("c1") {
		t.Fatalf("expected Delete of an already-removed id to report false")
	}
}

// An LRU-bounded store evicts the least-recently-used conversation
// once it exceeds its configured capacity (SPEC_FULL.md §4 supplement).
func TestStore_BoundedByLRU(t *testing.T) {
	s, err := NewStore(2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.GetOrCreate("c1")
	s.GetOrCreate("c2")
	s.GetOrCreate("c3")

	if s.Len() != 2 {
		t.Fatalf("expected store bounded at 2 conversations, got %d", s.Len())
	}
	if _, ok := s.Get("c1"); ok {
		t.Fatalf("expected oldest conversation c1 evicted")
	}
}

// Concurrent exchanges on the same conversation id must serialize: no
// exchange's user/assistant pair may interleave with another's (§5).
func TestMemory_ConcurrentAddExchange_Serializes(t *testing.T) {
	m := newMemory("c1", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddExchange("q", "a")
		}()
	}
	wg.Wait()

	msgs := m.Messages()
	if len(msgs) != 100 {
		t.Fatalf("expected 100 messages from 50 concurrent exchanges, got %d", len(msgs))
	}
	for i := 0; i < len(msgs); i += 2 {
		if msgs[i].Role != RoleUser || msgs[i+1].Role != RoleAssistant {
			t.Fatalf("expected user/assistant pairs to stay adjacent, got interleaving at %d: %+v", i, msgs[i:i+2])
		}
	}
}
