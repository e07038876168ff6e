package dealrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDealRepository implements DealRepository using GORM.
//
// Reserve and Release each run in their own (nested, when a unit of work is open)
// transaction so that the stock counter and the reservation row always move together.
type GormDealRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDealRepository creates a new GORM deal repository.
func NewGormDealRepository(db *gorm.DB, tracker aggregateTracker) *GormDealRepository {
	return &GormDealRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new deal.
func (r *GormDealRepository) Add(ctx context.Context, aggregate *deal.Deal) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a deal by ID.
func (r *GormDealRepository) Get(ctx context.Context, id kernel.UUID) (*deal.Deal, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DealDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("deal", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Reserve increments sold_quantity only when the deal is active, inside its window and has
// room for quantity, and records the reservation under token in the same transaction.
func (r *GormDealRepository) Reserve(
	ctx context.Context,
	dealID kernel.UUID,
	quantity int,
	token kernel.UUID,
	now time.Time,
) (*deal.Reservation, error) {
	reservation, err := deal.NewReservation(token, dealID, quantity, now)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&DealDTO{}).
			Where("id = ? AND is_active AND start_date <= ? AND end_date >= ? AND sold_quantity + ? <= max_quantity",
				dealID.Bytes(), now, now, quantity).
			Update("sold_quantity", gorm.Expr("sold_quantity + ?", quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.refusal(tx, dealID, quantity, now)
		}

		dto := reservationFromDomain(reservation)
		return tx.Create(&dto).Error
	})
	if err != nil {
		return nil, err
	}

	r.tracker.TrackAggregate(reservation.Token(), reservation)
	return reservation, nil
}

// refusal explains why the conditional increment matched no row.
func (r *GormDealRepository) refusal(tx *gorm.DB, dealID kernel.UUID, quantity int, now time.Time) error {
	var dto DealDTO
	if err := tx.First(&dto, "id = ?", dealID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewObjectNotFoundError("deal", dealID.String())
		}
		return err
	}

	d, err := toDomain(dto)
	if err != nil {
		return err
	}
	if err = d.CheckReservable(quantity, now); err != nil {
		return err
	}
	return errs.NewDomainError(errs.ErrOutOfStock, fmt.Sprintf("deal %s changed while reserving", dealID))
}

// GetReservation retrieves a reservation by token.
func (r *GormDealRepository) GetReservation(ctx context.Context, token kernel.UUID) (*deal.Reservation, error) {
	dto, err := r.findReservation(r.db.WithContext(ctx), token)
	if err != nil {
		return nil, err
	}
	return reservationToDomain(dto)
}

// Commit marks the reservation as fulfilled. Committing twice is a no-op; committing a
// released reservation fails with errs.ErrAlreadyReleased.
func (r *GormDealRepository) Commit(ctx context.Context, token kernel.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&ReservationDTO{}).
		Where("token = ? AND released_at IS NULL AND committed_at IS NULL", token.Bytes()).
		Update("committed_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	reservation, err := r.GetReservation(ctx, token)
	if err != nil {
		return err
	}
	return reservation.Commit(at)
}

// Release closes the reservation and gives its quantity back to the deal. Only the first
// release of a token changes anything; later calls fail with errs.ErrAlreadyReleased.
func (r *GormDealRepository) Release(ctx context.Context, token kernel.UUID, at time.Time) (*deal.Reservation, error) {
	var released ReservationDTO
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&released).
			Clauses(clause.Returning{}).
			Where("token = ? AND released_at IS NULL", token.Bytes()).
			Update("released_at", at)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if _, findErr := r.findReservation(tx, token); findErr != nil {
				return findErr
			}
			return errs.NewDomainError(errs.ErrAlreadyReleased, fmt.Sprintf("reservation %s", token))
		}

		restock := tx.Model(&DealDTO{}).
			Where("id = ? AND sold_quantity >= ?", released.DealID, released.Quantity).
			Update("sold_quantity", gorm.Expr("sold_quantity - ?", released.Quantity))
		if restock.Error != nil {
			return restock.Error
		}
		if restock.RowsAffected == 0 {
			return fmt.Errorf("deal %s cannot take back %d units", released.DealID, released.Quantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reservationToDomain(released)
}

// BindToOrder records orderID as the owner of every token. Tokens owned by another order
// or unknown tokens fail the whole call.
func (r *GormDealRepository) BindToOrder(ctx context.Context, tokens []kernel.UUID, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	raw := make([]uuid.UUID, 0, len(tokens))
	for _, token := range tokens {
		raw = append(raw, token.Bytes())
	}

	result := r.db.WithContext(ctx).Model(&ReservationDTO{}).
		Where("token IN ? AND (order_id IS NULL OR order_id = ?)", raw, orderID.Bytes()).
		Update("order_id", orderID.Bytes())
	if result.Error != nil {
		return result.Error
	}
	if int(result.RowsAffected) != len(tokens) {
		return errs.NewValueIsInvalidErrorWithCause("tokens",
			fmt.Errorf("%d of %d reservations could be bound to order %s", result.RowsAffected, len(tokens), orderID))
	}
	return nil
}

// GetOpenForOrder lists the unreleased reservations of orderID, oldest first.
func (r *GormDealRepository) GetOpenForOrder(ctx context.Context, orderID kernel.UUID) ([]*deal.Reservation, error) {
	var dtos []ReservationDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND released_at IS NULL", orderID.Bytes()).
		Order("reserved_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	reservations := make([]*deal.Reservation, 0, len(dtos))
	for _, dto := range dtos {
		reservation, err := reservationToDomain(dto)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}

// DeactivateExpired retires every active deal whose end date is before now and returns
// their ids. Quantities are left untouched.
func (r *GormDealRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]kernel.UUID, error) {
	var retired []DealDTO
	err := r.db.WithContext(ctx).Model(&retired).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("is_active AND end_date < ?", now).
		Update("is_active", false).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(retired))
	for _, dto := range retired {
		id, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *GormDealRepository) findReservation(db *gorm.DB, token kernel.UUID) (ReservationDTO, error) {
	if err := token.Validate(); err != nil {
		return ReservationDTO{}, err
	}

	var dto ReservationDTO
	if err := db.First(&dto, "token = ?", token.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReservationDTO{}, errs.NewObjectNotFoundError("reservation", token.String())
		}
		return ReservationDTO{}, err
	}
	return dto, nil
}
