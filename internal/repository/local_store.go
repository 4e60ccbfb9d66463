package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
)

// localStoreVersion is the only file schema version LocalStore reads and writes.
const localStoreVersion = 1

// ErrCorruptStore is returned when a booking file cannot be loaded.
var ErrCorruptStore = errors.New("corrupt booking store")

// localStoreFile is the on-disk layout: {"version":1,"bookings":{"<userId>":[record...]}}.
type localStoreFile struct {
	Version  int                               `json:"version"`
	Bookings map[string][]bookingDomain.Record `json:"bookings"`
}

// LocalStore keeps bookings in memory and, when given a path, mirrors them to a JSON file.
// Writers are exclusive; a change is visible only after it has been persisted.
type LocalStore struct {
	mu     sync.RWMutex
	path   string
	byUser map[string][]*bookingDomain.Booking
	owner  map[uuid.UUID]string
}

// NewLocalStore creates an empty in-memory store.
func NewLocalStore() *LocalStore {
	return &LocalStore{
		byUser: make(map[string][]*bookingDomain.Booking),
		owner:  make(map[uuid.UUID]string),
	}
}

// OpenLocalStore creates a store persisted at path, loading it if the file exists.
func OpenLocalStore(path string) (*LocalStore, error) {
	s := NewLocalStore()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read booking store %s: %w", path, err)
	}
	if err := s.load(data); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCorruptStore, path, err)
	}
	return s, nil
}

func (s *LocalStore) load(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var file localStoreFile
	if err := dec.Decode(&file); err != nil {
		return err
	}
	if file.Version != localStoreVersion {
		return fmt.Errorf("unsupported schema version %d", file.Version)
	}

	for userID, records := range file.Bookings {
		list := make([]*bookingDomain.Booking, 0, len(records))
		for _, rec := range records {
			if rec.UserID != userID {
				return fmt.Errorf("record %s is filed under user %q but owned by %q", rec.ID, userID, rec.UserID)
			}
			bk, err := bookingDomain.FromRecord(rec)
			if err != nil {
				return err
			}
			if err := checkCreatable(userID, bk); err != nil {
				return err
			}
			if _, dup := s.owner[bk.ID()]; dup {
				return fmt.Errorf("booking id %s appears more than once", bk.ID())
			}
			s.owner[bk.ID()] = userID
			list = append(list, bk)
		}
		bookingDomain.SortNewestFirst(list)
		s.byUser[userID] = list
	}
	return nil
}

// Create stores a new booking for userID.
func (s *LocalStore) Create(ctx context.Context, userID string, bk *bookingDomain.Booking) (*bookingDomain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkCreatable(userID, bk); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.owner[bk.ID()]; exists {
		return nil, domain.NewDuplicateBookingError(bk.ID().String())
	}

	current := s.byUser[userID]
	list := make([]*bookingDomain.Booking, 0, len(current)+1)
	list = append(list, current...)
	list = append(list, bk)
	bookingDomain.SortNewestFirst(list)

	if err := s.commit(userID, list); err != nil {
		return nil, err
	}
	s.owner[bk.ID()] = userID
	return bk, nil
}

// ListForUser returns the user's bookings, newest first.
func (s *LocalStore) ListForUser(ctx context.Context, userID string) ([]*bookingDomain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*bookingDomain.Booking{}, s.byUser[userID]...), nil
}

// FindByID retrieves a booking by its unique identifier.
func (s *LocalStore) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, bk := s.find(id)
	if bk == nil {
		return nil, domain.NewBookingNotFoundError(id.String())
	}
	return bk, nil
}

// UpdateStatus moves a booking to status if the status machine allows it.
func (s *LocalStore) UpdateStatus(ctx context.Context, id uuid.UUID, status bookingDomain.BookingStatus) (*bookingDomain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, bk := s.find(id)
	if bk == nil {
		return nil, domain.NewBookingNotFoundError(id.String())
	}
	next, err := bk.WithStatus(status)
	if err != nil {
		return nil, err
	}

	userID := s.owner[id]
	list := append([]*bookingDomain.Booking{}, s.byUser[userID]...)
	list[idx] = next

	if err := s.commit(userID, list); err != nil {
		return nil, err
	}
	return next, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (s *LocalStore) CountByStatus(ctx context.Context) (map[bookingDomain.BookingStatus]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := emptyCounts()
	for _, list := range s.byUser {
		for _, bk := range list {
			counts[bk.Status()]++
		}
	}
	return counts, nil
}

// find returns the booking and its index in its owner's list. Callers hold the lock.
func (s *LocalStore) find(id uuid.UUID) (int, *bookingDomain.Booking) {
	userID, ok := s.owner[id]
	if !ok {
		return -1, nil
	}
	for i, bk := range s.byUser[userID] {
		if bk.ID() == id {
			return i, bk
		}
	}
	return -1, nil
}

// commit persists the state with userID's list replaced, then swaps it in.
// Callers hold the write lock.
func (s *LocalStore) commit(userID string, list []*bookingDomain.Booking) error {
	if s.path != "" {
		if err := s.persist(userID, list); err != nil {
			return err
		}
	}
	s.byUser[userID] = list
	return nil
}

func (s *LocalStore) persist(userID string, list []*bookingDomain.Booking) error {
	file := localStoreFile{
		Version:  localStoreVersion,
		Bookings: make(map[string][]bookingDomain.Record, len(s.byUser)+1),
	}
	for uid, bookings := range s.byUser {
		if uid == userID {
			continue
		}
		file.Bookings[uid] = toRecords(bookings)
	}
	file.Bookings[userID] = toRecords(list)

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode booking store: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

func toRecords(bookings []*bookingDomain.Booking) []bookingDomain.Record {
	records := make([]bookingDomain.Record, len(bookings))
	for i, bk := range bookings {
		records[i] = bk.ToRecord()
	}
	return records
}

// writeFileAtomic replaces path with data through a synced temp file and a rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write booking store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync booking store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close booking store: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace booking store: %w", err)
	}
	return nil
}
