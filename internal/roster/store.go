package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gradebook/internal/infrastructure"
	"gradebook/internal/storage"
	"gradebook/internal/tabular"
)

// Input is a create or update request as typed by a user. Grade values are
// raw strings; blank means ungraded.
type Input struct {
	FullName   string
	ClassLabel string
	Grades     map[string]string
}

// Store is the authoritative roster. Writers are serialized and every
// mutation is persisted to the slot before it becomes visible.
type Store struct {
	mu       sync.RWMutex
	slot     storage.Slot
	key      string
	logger   *slog.Logger
	subjects []string
	records  []Record
}

// NewStore returns an empty store persisting under key.
func NewStore(slot storage.Slot, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = storage.DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		slot:     slot,
		key:      key,
		logger:   infrastructure.WithComponent(logger, "roster_store"),
		subjects: []string{},
	}
}

// Load replaces the in-memory roster with the persisted one. It reports
// whether any records were restored. Missing, unreadable or corrupt payloads
// reset the store to empty and are logged, never returned.
func (s *Store) Load(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subjects, s.records = []string{}, nil

	data, err := s.slot.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.InfoContext(ctx, "no stored journal, starting empty")
		return false
	}
	if err != nil {
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "failed to read stored journal",
			slog.String("key", s.key))
		return false
	}

	rows, err := DecodeRows(data)
	if err != nil {
		infrastructure.WithError(s.logger, err).WarnContext(ctx, "stored journal is corrupt, starting empty",
			slog.String("key", s.key))
		return false
	}

	ds, err := Normalize(rows)
	if err != nil {
		s.logger.InfoContext(ctx, "stored journal is empty")
		return false
	}

	s.subjects, s.records = ds.Subjects, ds.Records
	s.logger.InfoContext(ctx, "journal restored",
		slog.Int("records", len(s.records)),
		slog.Int("subjects", len(s.subjects)),
		slog.Int("coerced_values", ds.Coerced))
	return true
}

// Snapshot returns a deep copy of the roster.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Subjects: s.subjects, Records: s.records}.Clone()
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Subjects returns a copy of the subject list.
func (s *Store) Subjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.subjects...)
}

// Get returns the record at index.
func (s *Store) Get(index int) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkIndex(index); err != nil {
		return Record{}, err
	}
	return s.records[index].Clone(), nil
}

// Create validates in and appends it, returning the new index.
func (s *Store) Create(ctx context.Context, in Input) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.buildRecord(in)
	if err != nil {
		return -1, err
	}

	next := make([]Record, len(s.records), len(s.records)+1)
	copy(next, s.records)
	next = append(next, rec)

	if err := s.commit(ctx, s.subjects, next); err != nil {
		return -1, err
	}
	return len(next) - 1, nil
}

// Update validates in and replaces the record at index.
func (s *Store) Update(ctx context.Context, index int, in Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}
	rec, err := s.buildRecord(in)
	if err != nil {
		return err
	}

	next := make([]Record, len(s.records))
	copy(next, s.records)
	next[index] = rec

	return s.commit(ctx, s.subjects, next)
}

// Delete removes the record at index. Removing the last record also clears
// the subject list, so the next import starts from zero state.
func (s *Store) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}

	next := make([]Record, 0, len(s.records)-1)
	next = append(next, s.records[:index]...)
	next = append(next, s.records[index+1:]...)

	subjects := s.subjects
	if len(next) == 0 {
		subjects = []string{}
	}
	return s.commit(ctx, subjects, next)
}

// BulkReplace swaps the whole roster for ds, as an import does.
func (s *Store) BulkReplace(ctx context.Context, ds Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := ds.Snapshot.Clone()
	return s.commit(ctx, clone.Subjects, clone.Records)
}

// commit persists the candidate state and only then installs it.
// Callers hold the write lock.
func (s *Store) commit(ctx context.Context, subjects []string, records []Record) error {
	data, err := EncodeSnapshot(Snapshot{Subjects: subjects, Records: records})
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	if err := s.slot.Put(ctx, s.key, data); err != nil {
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "failed to persist journal",
			slog.String("key", s.key))
		return fmt.Errorf("persist journal: %w", err)
	}
	s.subjects, s.records = subjects, records
	return nil
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.records) {
		return &IndexOutOfRangeError{Index: index, Len: len(s.records)}
	}
	return nil
}

// buildRecord validates every field before anything is mutated. Values for
// subjects outside the subject list are ignored.
func (s *Store) buildRecord(in Input) (Record, error) {
	var fields []FieldError

	name := strings.TrimSpace(in.FullName)
	if name == "" {
		fields = append(fields, FieldError{Field: tabular.FieldFullName, Message: "full name is required"})
	}
	class := strings.TrimSpace(in.ClassLabel)
	if class == "" {
		fields = append(fields, FieldError{Field: tabular.FieldClass, Message: "class is required"})
	}

	grades := make(map[string]Grade, len(s.subjects))
	for _, subj := range s.subjects {
		g, err := ParseGrade(in.Grades[subj])
		if err != nil {
			fields = append(fields, FieldError{Field: subj, Message: err.Error()})
			continue
		}
		grades[subj] = g
	}

	if len(fields) > 0 {
		return Record{}, &ValidationError{Fields: fields}
	}
	return Record{FullName: name, ClassLabel: class, Grades: grades}, nil
}
