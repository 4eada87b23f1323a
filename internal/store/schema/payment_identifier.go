package schema

import (
	"time"

	"github.com/feral-file/ff-agent-registry/internal/domain"
)

// PaymentIdentifier represents the payment_identifiers table - the settlement
// address of an entry for one payment type
type PaymentIdentifier struct {
	ID      uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	EntryID uint64 `gorm:"column:entry_id;not null"`
	// Address is the most recently observed top holder of the entry's asset
	Address     string             `gorm:"column:payment_identifier;not null;type:text"`
	PaymentType domain.PaymentType `gorm:"column:payment_type;not null;type:text"`
	CreatedAt   time.Time          `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the PaymentIdentifier model
func (PaymentIdentifier) TableName() string {
	return "payment_identifiers"
}
