package convfilter

import (
	"context"
	"testing"

	"github.com/Aman-CERP/resumeretrieval/internal/chatmodel"
	"github.com/Aman-CERP/resumeretrieval/internal/retrieval"
)

func cached() []retrieval.SearchResultItem {
	return []retrieval.SearchResultItem{
		{Name: "A", ExtractedInfo: &retrieval.ExtractedInfo{Location: "Bengaluru"}},
		{Name: "B", ExtractedInfo: &retrieval.ExtractedInfo{Location: "Remote"}},
		{Name: "C", ExtractedInfo: &retrieval.ExtractedInfo{Location: "Bengaluru"}},
	}
}

func TestHasFilterIntent(t *testing.T) {
	cases := map[string]bool{
		"only those in Bengaluru": true,
		"show me senior people":   true,
		"Find QA engineers":       false,
		"FILTER by Go skills":     true,
		"narrow down to Go devs":  true,
	}
	for msg, want := range cases {
		if got := hasFilterIntent(msg); got != want {
			t.Errorf("hasFilterIntent(%q) = %v, want %v", msg, got, want)
		}
	}
}

// Scenario 6 (§8): the filter path never hits the store, and the
// returned subset preserves cached order, filtering out non-matches.
func TestApply_ReturnsSubsetInOriginalOrder(t *testing.T) {
	resp := `{"filteredResults":[{"name":"A","matches":true,"reasoning":"Bengaluru"},{"name":"B","matches":false,"reasoning":"not Bengaluru"},{"name":"C","matches":true,"reasoning":"Bengaluru"}],"summary":"2 of 3 in Bengaluru"}`
	stub := chatmodel.NewStubClient(chatmodel.StubResponse{Content: resp})
	f := New(stub)

	out, summary, err := f.Apply(context.Background(), "only those in Bengaluru", cached(), "trace-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].Name != "A" || out[1].Name != "C" {
		t.Fatalf("expected [A, C] in order, got %+v", out)
	}
	if summary != "2 of 3 in Bengaluru" {
		t.Fatalf("unexpected summary: %q", summary)
	}
	if len(stub.Calls()) != 1 {
		t.Fatalf("expected exactly one chat call, got %d", len(stub.Calls()))
	}
}

// Fail-open on parse failure: ALL cached results return (§4.J step 5).
func TestApply_ParseFailureFallsOpenToAllResults(t *testing.T) {
	stub := chatmodel.NewStubClient(chatmodel.StubResponse{Content: "not json at all"})
	f := New(stub)

	in := cached()
	out, summary, err := f.Apply(context.Background(), "anything", in, "trace-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected all %d cached results, got %d", len(in), len(out))
	}
	if summary == "" {
		t.Fatalf("expected an explanatory summary")
	}
}

func TestApply_TransportErrorFallsOpen(t *testing.T) {
	stub := chatmodel.NewStubClient(chatmodel.StubResponse{Err: context.Canceled})
	f := New(stub)

	in := cached()
	out, summary, err := f.Apply(context.Background(), "anything", in, "trace-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected all cached results on transport error, got %d", len(out))
	}
	if summary == "" {
		t.Fatalf("expected an explanatory summary")
	}
}

func TestApply_EmptyCachedResults(t *testing.T) {
	stub := chatmodel.NewStubClient()
	f := New(stub)

	out, summary, err := f.Apply(context.Background(), "anything", nil, "trace-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 || summary != "" {
		t.Fatalf("expected empty result with no chat call, got %+v %q", out, summary)
	}
	if len(stub.Calls()) != 0 {
		t.Fatalf("expected no chat calls for empty input")
	}
}
