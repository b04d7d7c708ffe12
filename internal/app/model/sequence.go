package model

import "time"

// SequenceStorePublicID backs the store public id allocator.
const SequenceStorePublicID = "store_public_id"

// Sequence is a named counter. Increments go through the sequence
// repository, which retries on concurrent writers.
type Sequence struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Sequence) TableName() string {
	return "sequences"
}
