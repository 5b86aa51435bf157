package services

import (
	"context"
	"errors"
	"sync"

	"github.com/aula-labs/aularag/internal/core/ports/driven"
)

// mockEmbedder returns canned vectors keyed by input text, falling back to
// a default vector for unknown texts.
type mockEmbedder struct {
	vectors    map[string][]float32
	defaultVec []float32
	dimensions int

	failDocuments bool
	failQuery     bool

	mu            sync.Mutex
	documentCalls [][]string
	queryCalls    []string
}

var errEmbedderDown = errors.New("embedder down")

func newMockEmbedder(dimensions int) *mockEmbedder {
	defaultVec := make([]float32, dimensions)
	defaultVec[0] = 1
	return &mockEmbedder{
		vectors:    make(map[string][]float32),
		defaultVec: defaultVec,
		dimensions: dimensions,
	}
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return m.defaultVec
}

func (m *mockEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.documentCalls = append(m.documentCalls, texts)
	m.mu.Unlock()

	if m.failDocuments {
		return nil, errEmbedderDown
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.queryCalls = append(m.queryCalls, text)
	m.mu.Unlock()

	if m.failQuery {
		return nil, errEmbedderDown
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) Dimensions() int            { return m.dimensions }
func (m *mockEmbedder) ModelName() string          { return "mock" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockRegistry records entries in memory.
type mockRegistry struct {
	mu      sync.Mutex
	entries []driven.RegistryEntry
	fail    bool
}

func (m *mockRegistry) Record(_ context.Context, entry driven.RegistryEntry) error {
	if m.fail {
		return errors.New("registry down")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockRegistry) List(context.Context, driven.RegistryFilter) ([]driven.RegistryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.RegistryEntry(nil), m.entries...), nil
}

func (m *mockRegistry) Subjects(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var subjects []string
	for _, e := range m.entries {
		if e.Asignatura != "" && !seen[e.Asignatura] {
			seen[e.Asignatura] = true
			subjects = append(subjects, e.Asignatura)
		}
	}
	return subjects, nil
}

func (m *mockRegistry) Close() error { return nil }
