package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      string          `gorm:"not null;size:64;index"`
	Status      string          `gorm:"not null;size:20;index"`
	TripRequest json.RawMessage `gorm:"type:jsonb;not null"`
	Quote       json.RawMessage `gorm:"type:jsonb;not null"`
	TotalCents  int64           `gorm:"not null"`
	Currency    string          `gorm:"not null;size:3"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the PostgreSQL implementation of booking.Store.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Create persists a new booking. Writes for the same user are serialized with a
// transaction-scoped advisory lock.
func (r *GormBookingRepository) Create(ctx context.Context, userID string, bk *bookingDomain.Booking) (*bookingDomain.Booking, error) {
	if err := checkCreatable(userID, bk); err != nil {
		return nil, err
	}
	model, err := toBookingModel(bk)
	if err != nil {
		return nil, fmt.Errorf("failed to convert booking to model: %w", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", userID).Error; err != nil {
			return fmt.Errorf("failed to lock user bookings: %w", err)
		}

		var existing int64
		if err := tx.Model(&BookingModel{}).Where("id = ?", model.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check booking id: %w", err)
		}
		if existing > 0 {
			return domain.NewDuplicateBookingError(model.ID.String())
		}

		if err := tx.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.NewDuplicateBookingError(model.ID.String())
			}
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bk, nil
}

// ListForUser returns the user's bookings, newest first.
func (r *GormBookingRepository) ListForUser(ctx context.Context, userID string) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewBookingNotFoundError(id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// UpdateStatus moves a booking to status under a row lock, guarded by the version column.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status bookingDomain.BookingStatus) (*bookingDomain.Booking, error) {
	var updated *bookingDomain.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model BookingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewBookingNotFoundError(id.String())
			}
			return fmt.Errorf("failed to load booking for update: %w", err)
		}

		current, err := toDomainBooking(&model)
		if err != nil {
			return err
		}
		next, err := current.WithStatus(status)
		if err != nil {
			return err
		}

		result := tx.Model(&BookingModel{}).
			Where("id = ? AND version = ?", id, model.Version).
			Updates(map[string]interface{}{
				"status":     string(next.Status()),
				"version":    model.Version + 1,
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update booking status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("booking %s was modified by another transaction", id)
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[bookingDomain.BookingStatus]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := emptyCounts()
	for _, sc := range results {
		counts[bookingDomain.BookingStatus(sc.Status)] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	requestJSON, err := json.Marshal(bk.Request())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trip request: %w", err)
	}

	quoteJSON, err := json.Marshal(bk.Quote())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quote: %w", err)
	}

	return &BookingModel{
		ID:          bk.ID(),
		UserID:      bk.UserID(),
		Status:      string(bk.Status()),
		TripRequest: requestJSON,
		Quote:       quoteJSON,
		TotalCents:  bk.Quote().TotalCents,
		Currency:    bk.Quote().Currency,
		Version:     1,
		CreatedAt:   bk.CreatedAt(),
		UpdatedAt:   bk.CreatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var req trip.TripRequest
	if err := json.Unmarshal(m.TripRequest, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip request: %w", err)
	}

	var quote trip.Quote
	if err := json.Unmarshal(m.Quote, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.FromRecord(bookingDomain.Record{
		ID:          m.ID,
		UserID:      m.UserID,
		TripRequest: req,
		Quote:       quote,
		Status:      status,
		CreatedAt:   m.CreatedAt.UTC(),
	})
}
