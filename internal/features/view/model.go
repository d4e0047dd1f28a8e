// Package view stores per-user, per-lesson viewing progress.
package view

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/coursetrack-server-go/pkg/types"
)

// CompletionThreshold is the watched share of a lesson at which a view counts as completed.
const CompletionThreshold = 0.8

// View is the progress of one user on one lesson. At most one row per (user, lesson).
type View struct {
	types.BaseModel

	UserID          uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_view_user_lesson,priority:1" json:"userId"`
	LessonID        uuid.UUID `gorm:"type:uuid;not null;column:lesson_id;uniqueIndex:idx_view_user_lesson,priority:2;index" json:"lessonId"`
	Status          bool      `gorm:"not null;default:false" json:"status"`
	ViewingTime     int       `gorm:"type:int;not null;default:0;column:viewing_time" json:"viewingTime"` // seconds
	LastViewingTime time.Time `gorm:"not null;column:last_viewing_time" json:"lastViewingTime"`
}

// TableName overrides the default table name.
func (View) TableName() string { return "views" }

// Key identifies a view by its (user, lesson) pair.
type Key struct {
	UserID   uuid.UUID
	LessonID uuid.UUID
}

// IsCompleted applies the completion threshold. A non-positive duration never completes.
func IsCompleted(viewingTime, duration int) bool {
	if duration <= 0 {
		return false
	}
	return float64(viewingTime)/float64(duration) >= CompletionThreshold
}

// Ensure creates a not-started view for every key that has none yet. Existing rows are untouched.
func Ensure(ctx context.Context, db *gorm.DB, keys []Key, now time.Time) error {
	if len(keys) == 0 {
		return nil
	}

	rows := make([]View, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, View{
			UserID:          key.UserID,
			LessonID:        key.LessonID,
			LastViewingTime: now,
		})
	}

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, 500).Error
}

// Get loads the view of a user on a lesson.
func Get(ctx context.Context, db *gorm.DB, userID, lessonID uuid.UUID) (View, error) {
	var v View
	err := db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return v, ErrViewNotFound
	}
	return v, err
}

// ForUser returns the user's views on the given lessons keyed by lesson ID.
func ForUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]View, error) {
	out := make(map[uuid.UUID]View, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return out, nil
	}

	var rows []View
	if err := db.WithContext(ctx).
		Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.LessonID] = row
	}
	return out, nil
}

// RecordProgress stores a new viewing time for the user's view and recomputes its status
// against the lesson duration. The caller must already hold a view on the lesson.
func RecordProgress(ctx context.Context, db *gorm.DB, userID, lessonID uuid.UUID, viewingTime, duration int, now time.Time) (View, error) {
	if viewingTime < 0 {
		return View{}, ErrViewingTimeInvalid
	}

	v, err := Get(ctx, db, userID, lessonID)
	if err != nil {
		return v, err
	}

	v.ViewingTime = viewingTime
	v.LastViewingTime = now
	v.Status = IsCompleted(viewingTime, duration)

	err = db.WithContext(ctx).Model(&v).
		Select("viewing_time", "last_viewing_time", "status", "updated_at").
		Updates(map[string]interface{}{
			"viewing_time":      v.ViewingTime,
			"last_viewing_time": v.LastViewingTime,
			"status":            v.Status,
		}).Error
	if err != nil {
		return v, err
	}

	return v, nil
}
