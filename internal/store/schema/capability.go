package schema

import "time"

// Capability represents the capabilities table - a shared (name, version) pair
// referenced by any number of entries
type Capability struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;not null;type:text"`
	Version     string    `gorm:"column:version;not null;type:text"`
	Description *string   `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Capability model
func (Capability) TableName() string {
	return "capabilities"
}
