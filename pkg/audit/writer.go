package audit

import (
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/sha3"
)

const (
	// GenesisHash is HashPrev of the first record in a chain.
	GenesisHash = "sha3-256:genesis"

	// HashPrefix is prepended to every chain hash.
	HashPrefix = "sha3-256:"
)

// Writer persists audit events.
//
// Write validates the event, sets HashPrev and Hash, and returns an error if
// the event could not be recorded.
type Writer interface {
	Write(event *Event) error
	Close() error
	LastHash() string
}

// NopWriter discards all events.
type NopWriter struct{}

var _ Writer = NopWriter{}

func (NopWriter) Write(*Event) error { return nil }
func (NopWriter) Close() error       { return nil }
func (NopWriter) LastHash() string   { return GenesisHash }

// MemoryWriter keeps a hash-chained trail in memory.
type MemoryWriter struct {
	mu       sync.Mutex
	events   []Event
	lastHash string
}

var _ Writer = (*MemoryWriter)(nil)

// NewMemoryWriter creates an empty in-memory trail.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{lastHash: GenesisHash}
}

// Write chains and appends event.
func (w *MemoryWriter) Write(event *Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := chain(event, w.lastHash); err != nil {
		return err
	}
	w.events = append(w.events, *event)
	w.lastHash = event.Hash
	return nil
}

// Events returns a copy of the recorded events.
func (w *MemoryWriter) Events() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}

// Types returns the event types in write order.
func (w *MemoryWriter) Types() []EventType {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]EventType, len(w.events))
	for i, e := range w.events {
		out[i] = e.EventType
	}
	return out
}

func (w *MemoryWriter) Close() error { return nil }

// LastHash returns the hash of the last written event.
func (w *MemoryWriter) LastHash() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastHash
}

// MultiWriter writes to several writers; the first failure aborts.
type MultiWriter struct {
	writers []Writer
}

var _ Writer = (*MultiWriter)(nil)

// NewMultiWriter creates a writer that writes to all provided writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write hands each writer its own copy of event, since writers set the
// chain fields independently.
func (m *MultiWriter) Write(event *Event) error {
	for _, w := range m.writers {
		e := *event
		if err := w.Write(&e); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiWriter) Close() error {
	var lastErr error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (m *MultiWriter) LastHash() string {
	if len(m.writers) > 0 {
		return m.writers[0].LastHash()
	}
	return GenesisHash
}

// chain validates event and sets its chain fields after prev.
func chain(event *Event, prev string) error {
	if err := event.Validate(); err != nil {
		return err
	}
	event.HashPrev = prev
	canonical, err := event.CanonicalJSON()
	if err != nil {
		return err
	}
	event.Hash = calculateHash(canonical, prev)
	return nil
}

// calculateHash computes SHA3-256(data || prevHash).
func calculateHash(data []byte, prevHash string) string {
	h := sha3.New256()
	_, _ = h.Write(data)
	_, _ = h.Write([]byte(prevHash))
	return HashPrefix + hex.EncodeToString(h.Sum(nil))
}
