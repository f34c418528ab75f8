package internal

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

const (
	// HistoryStorageKey is the fixed key the snapshot lives under
	HistoryStorageKey = "chatHistory"
	// DefaultMaxMessages bounds each collection's history
	DefaultMaxMessages = 500
)

// snapshotMessage is the persisted form of a ChatMessage
type snapshotMessage struct {
	ID        snapshotID `json:"id"`
	Text      string     `json:"text"`
	Sender    Sender     `json:"sender"`
	Timestamp string     `json:"timestamp"`
	IsError   bool       `json:"isError,omitempty"`
}

// HistoryStore holds per-collection chat history and mirrors it to a KVStore.
// Every mutation persists the full mapping before returning. Persistence is
// best-effort: failures are logged, not returned.
type HistoryStore struct {
	mu          sync.Mutex
	kv          KVStore
	key         string
	maxMessages int
	history     map[string][]ChatMessage
	loaded      bool
}

// HistoryOption configures a HistoryStore
type HistoryOption func(*HistoryStore)

// WithMaxMessages bounds each collection's history; 0 disables the bound
func WithMaxMessages(n int) HistoryOption {
	return func(s *HistoryStore) {
		if n >= 0 {
			s.maxMessages = n
		}
	}
}

// WithStorageKey overrides the snapshot key
func WithStorageKey(key string) HistoryOption {
	return func(s *HistoryStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewHistoryStore creates an empty store. Call Load to restore a snapshot;
// the first mutation loads it otherwise.
func NewHistoryStore(kv KVStore, opts ...HistoryOption) *HistoryStore {
	s := &HistoryStore{
		kv:          kv,
		key:         HistoryStorageKey,
		maxMessages: DefaultMaxMessages,
		history:     make(map[string][]ChatMessage),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces in-memory state with the persisted snapshot. A corrupt
// snapshot is logged and discarded; the store stays usable and empty.
// A read failure leaves in-memory state untouched.
func (s *HistoryStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *HistoryStore) loadLocked() error {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		LogWarn("Failed to read chat history: %v", err)
		return err
	}

	s.loaded = true
	s.history = make(map[string][]ChatMessage)
	if !ok {
		return nil
	}

	history, err := decodeSnapshot(raw)
	if err != nil {
		parseErr := &PersistenceParseError{Key: s.key, Err: err}
		LogError("Failed to parse saved chat history: %v", parseErr)
		return parseErr
	}

	s.history = history
	LogDebug("Loaded chat history for %d collection(s)", len(history))
	return nil
}

// ensureLoadedLocked reports whether the snapshot has been read, so a
// mutation never overwrites history it has not seen
func (s *HistoryStore) ensureLoadedLocked() bool {
	if s.loaded {
		return true
	}
	_ = s.loadLocked()
	return s.loaded
}

// Append adds msg to the end of collection's history and persists
func (s *HistoryStore) Append(collection string, msg ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	canPersist := s.ensureLoadedLocked()
	msgs := append(s.history[collection], msg)
	if s.maxMessages > 0 && len(msgs) > s.maxMessages {
		dropped := len(msgs) - s.maxMessages
		msgs = append([]ChatMessage(nil), msgs[dropped:]...)
		LogDebug("Dropped %d old message(s) from %s", dropped, collection)
	}
	s.history[collection] = msgs
	if canPersist {
		s.persistLocked()
	}
}

// Clear empties one collection's history and persists
func (s *HistoryStore) Clear(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	canPersist := s.ensureLoadedLocked()
	s.history[collection] = []ChatMessage{}
	if canPersist {
		s.persistLocked()
	}
}

// ClearAll drops every collection and removes the snapshot entirely
func (s *HistoryStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = make(map[string][]ChatMessage)
	s.loaded = true
	if err := s.kv.Remove(s.key); err != nil {
		LogWarn("Failed to remove chat history: %v", err)
	}
}

// Messages returns a copy of collection's history, empty if there is none
func (s *HistoryStore) Messages(collection string) []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.history[collection]
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

// Collections returns the names with stored history, sorted
func (s *HistoryStore) Collections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.history))
	for name := range s.history {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of messages stored for collection
func (s *HistoryStore) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history[collection])
}

func (s *HistoryStore) persistLocked() {
	data, err := encodeSnapshot(s.history)
	if err != nil {
		LogWarn("Failed to encode chat history: %v", err)
		return
	}
	if err := s.kv.Set(s.key, data); err != nil {
		LogWarn("Failed to save chat history: %v", err)
	}
}

// snapshotID reads string ids and the millisecond ids browser clients wrote
type snapshotID string

func (id *snapshotID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = snapshotID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = snapshotID(n.String())
	return nil
}

func encodeSnapshot(history map[string][]ChatMessage) (string, error) {
	snap := make(map[string][]snapshotMessage, len(history))
	for collection, msgs := range history {
		out := make([]snapshotMessage, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, snapshotMessage{
				ID:        snapshotID(m.ID),
				Text:      m.Text,
				Sender:    m.Sender,
				Timestamp: m.Timestamp.Format(time.RFC3339Nano),
				IsError:   m.IsError,
			})
		}
		snap[collection] = out
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeSnapshot(raw string) (map[string][]ChatMessage, error) {
	var snap map[string][]snapshotMessage
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, err
	}

	history := make(map[string][]ChatMessage, len(snap))
	for collection, msgs := range snap {
		out := make([]ChatMessage, 0, len(msgs))
		for _, m := range msgs {
			ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("message %s in %s: bad timestamp: %w", m.ID, collection, err)
			}
			out = append(out, ChatMessage{
				ID:        string(m.ID),
				Text:      m.Text,
				Sender:    m.Sender,
				Timestamp: ts,
				IsError:   m.IsError,
			})
		}
		history[collection] = out
	}
	return history, nil
}
