package assignmentrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// GormAssignmentRepository implements AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAssignmentRepository creates a new GORM assignment repository.
func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Assign opens record for its order.
//
// Callers assigning the same rider are serialized by a transaction-scoped advisory lock on
// the rider id, which makes the active-count check and the insert atomic per rider. Two
// riders racing for the same order are settled by the partial unique index on open
// assignments: the loser gets errs.ErrAlreadyAssigned.
func (r *GormAssignmentRepository) Assign(ctx context.Context, record *assignment.Record, policy assignment.Policy) error {
	if err := record.Validate(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", record.RiderID().String()).Error; err != nil {
			return err
		}

		var onOrder int64
		if err := tx.Model(&AssignmentDTO{}).
			Where("order_id = ? AND released_at IS NULL", record.OrderID().Bytes()).
			Count(&onOrder).Error; err != nil {
			return err
		}
		if onOrder > 0 {
			return alreadyAssigned(record.OrderID(), nil)
		}

		var riderLoad int64
		if err := tx.Model(&AssignmentDTO{}).
			Where("rider_id = ? AND released_at IS NULL", record.RiderID().Bytes()).
			Count(&riderLoad).Error; err != nil {
			return err
		}
		if err := policy.Admit(record.RiderID(), int(riderLoad)); err != nil {
			return err
		}

		dto := fromDomain(record)
		if err := tx.Create(&dto).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return alreadyAssigned(record.OrderID(), err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(record.ID(), record)
	return nil
}

func alreadyAssigned(orderID kernel.UUID, cause error) error {
	return errs.NewDomainErrorWithCause(errs.ErrAlreadyAssigned,
		fmt.Sprintf("order %s already has an active rider", orderID), cause)
}

// Release closes the active assignment of orderID.
func (r *GormAssignmentRepository) Release(ctx context.Context, orderID kernel.UUID, at time.Time) (*assignment.Record, error) {
	var released AssignmentDTO
	result := r.db.WithContext(ctx).Model(&released).
		Clauses(clause.Returning{}).
		Where("order_id = ? AND released_at IS NULL", orderID.Bytes()).
		Update("released_at", at)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewObjectNotFoundError("active assignment", orderID.String())
	}

	record, err := toDomain(released)
	if err != nil {
		return nil, err
	}
	r.tracker.TrackAggregate(record.ID(), record)
	return record, nil
}

// GetActive retrieves the open assignment of orderID.
func (r *GormAssignmentRepository) GetActive(ctx context.Context, orderID kernel.UUID) (*assignment.Record, error) {
	var dto AssignmentDTO
	err := r.db.WithContext(ctx).First(&dto, "order_id = ? AND released_at IS NULL", orderID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("active assignment", orderID.String())
	}
	if err != nil {
		return nil, err
	}
	return toDomain(dto)
}

// LockActive retrieves the open assignment of orderID with FOR SHARE. A concurrent Release
// waits for the caller's transaction, and once it has committed the row no longer matches.
func (r *GormAssignmentRepository) LockActive(ctx context.Context, orderID kernel.UUID) (*assignment.Record, error) {
	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
		First(&dto, "order_id = ? AND released_at IS NULL", orderID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("active assignment", orderID.String())
	}
	if err != nil {
		return nil, err
	}
	return toDomain(dto)
}

// GetHistory lists every assignment orderID ever had, oldest first.
func (r *GormAssignmentRepository) GetHistory(ctx context.Context, orderID kernel.UUID) ([]*assignment.Record, error) {
	var dtos []AssignmentDTO
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("assigned_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]*assignment.Record, 0, len(dtos))
	for _, dto := range dtos {
		record, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
