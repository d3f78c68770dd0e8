package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/match"
)

// SerializationError reports a slot whose bytes could not be decoded.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("corrupt snapshot in slot %s: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// EncodeRecord serializes a record into the durable snapshot format.
func EncodeRecord(r match.Record) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRecord parses a snapshot written by EncodeRecord.
func DecodeRecord(data []byte) (match.Record, error) {
	var r match.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return match.Record{}, err
	}
	if r.Status == "" {
		return match.Record{}, errors.New("snapshot has no status")
	}
	return r, nil
}

// EncodeHistory serializes the finished-match list.
func EncodeHistory(h []match.Record) ([]byte, error) {
	if h == nil {
		h = []match.Record{}
	}
	return json.Marshal(h)
}

// DecodeHistory parses a list written by EncodeHistory.
func DecodeHistory(data []byte) ([]match.Record, error) {
	var h []match.Record
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	return h, nil
}

// MatchStore reads and writes the current-match and history slots.
type MatchStore struct {
	slots Slots
	rules clock.Rules
}

// NewMatchStore wraps slots. rules seed the default record returned when no match is stored.
func NewMatchStore(slots Slots, rules clock.Rules) *MatchStore {
	return &MatchStore{slots: slots, rules: rules}
}

// LoadCurrent returns the stored current match, or the default unconfigured record when the
// slot is empty. A corrupt slot also yields the default record along with a *SerializationError;
// the stored bytes are left as they are.
func (s *MatchStore) LoadCurrent(ctx context.Context) (match.Record, []byte, error) {
	data, ok, err := s.slots.Get(ctx, CurrentKey)
	if err != nil {
		return match.New(s.rules), nil, err
	}
	if !ok {
		return match.New(s.rules), nil, nil
	}
	r, err := DecodeRecord(data)
	if err != nil {
		log.Warn("Ignoring corrupt current match snapshot", "error", err)
		return match.New(s.rules), nil, &SerializationError{Key: CurrentKey, Err: err}
	}
	return r, data, nil
}

// SaveCurrent writes pre-encoded snapshot bytes to the current slot.
func (s *MatchStore) SaveCurrent(ctx context.Context, data []byte) error {
	return s.slots.Put(ctx, CurrentKey, data)
}

// ClearCurrent removes the current match.
func (s *MatchStore) ClearCurrent(ctx context.Context) error {
	return s.slots.Delete(ctx, CurrentKey)
}

// LoadHistory returns the finished matches, oldest first. A corrupt slot yields an empty
// list and a *SerializationError.
func (s *MatchStore) LoadHistory(ctx context.Context) ([]match.Record, error) {
	data, ok, err := s.slots.Get(ctx, HistoryKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []match.Record{}, nil
	}
	h, err := DecodeHistory(data)
	if err != nil {
		log.Warn("Ignoring corrupt match history", "error", err)
		return []match.Record{}, &SerializationError{Key: HistoryKey, Err: err}
	}
	return h, nil
}

// SaveHistory rewrites the whole history slot and returns the bytes written.
func (s *MatchStore) SaveHistory(ctx context.Context, h []match.Record) ([]byte, error) {
	data, err := EncodeHistory(h)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.slots.Put(ctx, HistoryKey, data); err != nil {
		return nil, err
	}
	return data, nil
}

// CorruptHistoryKey names the side slot that keeps unreadable history bytes set aside at at.
func CorruptHistoryKey(at time.Time) string {
	return fmt.Sprintf("%s.corrupt.%d", HistoryKey, at.UnixNano())
}

// PreserveHistory copies the raw history bytes into a side slot so that rewriting the
// history does not lose them. It returns the side slot key, or "" when there is no history.
func (s *MatchStore) PreserveHistory(ctx context.Context, at time.Time) (string, error) {
	data, ok, err := s.slots.Get(ctx, HistoryKey)
	if err != nil || !ok {
		return "", err
	}
	key := CorruptHistoryKey(at)
	if err := s.slots.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to preserve history in %s: %w", key, err)
	}
	return key, nil
}
