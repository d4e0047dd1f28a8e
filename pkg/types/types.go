package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel contains common fields for all models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"-"`
}

// BeforeCreate assigns a random UUID when the caller did not set one.
// IDs are generated here rather than by a column default so the schema stays portable.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ViewStatus is the human readable completion label attached to lesson responses.
type ViewStatus string

const (
	ViewStatusWatched    ViewStatus = "watched"
	ViewStatusNotWatched ViewStatus = "not watched"
)

// StatusFor converts a stored completion flag into its label.
func StatusFor(completed bool) ViewStatus {
	if completed {
		return ViewStatusWatched
	}
	return ViewStatusNotWatched
}
