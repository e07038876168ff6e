// Package assignmentrepo persists rider assignments. Each assignment is one row; releasing
// it stamps released_at, so the rows of an order form its assignment history.
package assignmentrepo

import (
	"time"

	"marketplace/internal/core/domain/model/assignment"
	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AssignmentDTO represents the database structure for rider assignments.
type AssignmentDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	RiderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AssignedAt time.Time `gorm:"not null"`
	ReleasedAt *time.Time
}

// TableName specifies the database table name for rider assignments.
func (AssignmentDTO) TableName() string {
	return "rider_assignments"
}

func fromDomain(r *assignment.Record) AssignmentDTO {
	return AssignmentDTO{
		ID:         r.ID().Bytes(),
		OrderID:    r.OrderID().Bytes(),
		RiderID:    r.RiderID().Bytes(),
		AssignedAt: r.AssignedAt(),
		ReleasedAt: r.ReleasedAt(),
	}
}

func toDomain(dto AssignmentDTO) (*assignment.Record, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	riderID, err := kernel.UUIDFromBytes(dto.RiderID[:])
	if err != nil {
		return nil, err
	}

	var releasedAt *time.Time
	if dto.ReleasedAt != nil {
		at := dto.ReleasedAt.UTC()
		releasedAt = &at
	}
	return assignment.RestoreRecord(id, orderID, riderID, dto.AssignedAt.UTC(), releasedAt)
}
