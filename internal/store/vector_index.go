package store

import (
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// vectorIndex wraps coder/hnsw's pure-Go HNSW graph to serve ANN cosine
// queries over resume embeddings.
type vectorIndex struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[uint64]
	dimensions int

	idMap   map[string]uint64 // document ID -> internal key
	keyMap  map[uint64]string // internal key -> document ID
	nextKey uint64

	closed bool
}

func newVectorIndex(dimensions int) *vectorIndex {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &vectorIndex{
		graph:      graph,
		dimensions: dimensions,
		idMap:      make(map[string]uint64),
		keyMap:     make(map[uint64]string),
	}
}

// add inserts or replaces vectors keyed by document ID.
func (v *vectorIndex) add(ids []string, vectors [][]float32) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return fmt.Errorf("vector index is closed")
	}

	for _, vec := range vectors {
		if len(vec) != v.dimensions {
			return ErrDimensionMismatch{Expected: v.dimensions, Got: len(vec)}
		}
	}

	for i, id := range ids {
		if existingKey, exists := v.idMap[id]; exists {
			// Lazy deletion: orphan the old key rather than mutate the
			// graph, which coder/hnsw doesn't handle well for the last node.
			delete(v.keyMap, existingKey)
			delete(v.idMap, id)
		}

		key := v.nextKey
		v.nextKey++

		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		normalizeInPlace(vec)

		v.graph.Add(hnsw.MakeNode(key, vec))
		v.idMap[id] = key
		v.keyMap[key] = id
	}

	return nil
}

// search returns the k nearest document IDs to query, with raw cosine
// similarity (not clamped or normalized further). Document resolution
// happens in the adapter, which owns the ID -> document map.
func (v *vectorIndex) search(query []float32, k int) ([]vectorIDHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.closed {
		return nil, fmt.Errorf("vector index is closed")
	}

	if len(query) != v.dimensions {
		return nil, ErrDimensionMismatch{Expected: v.dimensions, Got: len(query)}
	}

	if v.graph.Len() == 0 || len(v.idMap) == 0 {
		return nil, ErrVectorIndexUnavailable
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeInPlace(normalized)

	nodes := v.graph.Search(normalized, k)

	hits := make([]vectorIDHit, 0, len(nodes))
	for _, node := range nodes {
		id, exists := v.keyMap[node.Key]
		if !exists {
			continue // orphaned (lazily deleted) node
		}
		distance := v.graph.Distance(normalized, node.Value)
		hits = append(hits, vectorIDHit{id: id, similarity: 1.0 - distance})
	}

	return hits, nil
}

// vectorIDHit is an intermediate result before the document map is
// resolved by the adapter.
type vectorIDHit struct {
	id         string
	similarity float32
}

func (v *vectorIndex) close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true
	v.graph = nil
	return nil
}

// normalizeInPlace normalizes a vector to unit length in place.
func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	invMagnitude := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= invMagnitude
	}
}
