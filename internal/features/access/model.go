// Package access holds the join rows that connect products to users and lessons.
package access

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/coursetrack-server-go/pkg/types"
)

// Access grants a user the lessons of a product. At most one row per (user, product).
type Access struct {
	types.BaseModel

	UserID    uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_access_user_product,priority:1" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;column:product_id;uniqueIndex:idx_access_user_product,priority:2;index" json:"productId"`
}

// TableName overrides the default table name.
func (Access) TableName() string { return "accesses" }

// LessonProduct places a lesson in a product. At most one row per (lesson, product).
type LessonProduct struct {
	types.BaseModel

	LessonID  uuid.UUID `gorm:"type:uuid;not null;column:lesson_id;uniqueIndex:idx_lesson_product,priority:1" json:"lessonId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;column:product_id;uniqueIndex:idx_lesson_product,priority:2;index" json:"productId"`
}

// TableName overrides the default table name.
func (LessonProduct) TableName() string { return "lesson_products" }

// Grant inserts Access rows for every user, skipping pairs that already exist.
func Grant(ctx context.Context, db *gorm.DB, productID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]Access, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, Access{UserID: userID, ProductID: productID})
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// Attach inserts LessonProduct rows for every lesson, skipping pairs that already exist.
func Attach(ctx context.Context, db *gorm.DB, productID uuid.UUID, lessonIDs []uuid.UUID) error {
	if len(lessonIDs) == 0 {
		return nil
	}

	rows := make([]LessonProduct, 0, len(lessonIDs))
	for _, lessonID := range lessonIDs {
		rows = append(rows, LessonProduct{LessonID: lessonID, ProductID: productID})
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// HasAccess reports whether the user holds an Access row for the product.
func HasAccess(ctx context.Context, db *gorm.DB, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&Access{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// ProductIDsForUser returns the products the user has Access to.
func ProductIDsForUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&Access{}).
		Where("user_id = ?", userID).
		Pluck("product_id", &ids).Error
	return ids, err
}

// VisibleLessonIDs returns the distinct lessons of every product the user has Access to.
func VisibleLessonIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).
		Table("lesson_products AS lp").
		Joins("JOIN accesses AS a ON a.product_id = lp.product_id").
		Where("a.user_id = ?", userID).
		Distinct("lp.lesson_id").
		Pluck("lp.lesson_id", &ids).Error
	return ids, err
}

// CanSeeLesson reports whether the lesson belongs to a product the user has Access to.
func CanSeeLesson(ctx context.Context, db *gorm.DB, userID, lessonID uuid.UUID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("lesson_products AS lp").
		Joins("JOIN accesses AS a ON a.product_id = lp.product_id").
		Where("a.user_id = ? AND lp.lesson_id = ?", userID, lessonID).
		Count(&count).Error
	return count > 0, err
}

// UsersByProduct maps product IDs to the users holding Access, oldest grant first.
func UsersByProduct(ctx context.Context, db *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []Access
	if err := db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], row.UserID)
	}
	return out, nil
}

// LessonsByProduct maps product IDs to their lesson IDs, oldest link first.
func LessonsByProduct(ctx context.Context, db *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []LessonProduct
	if err := db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], row.LessonID)
	}
	return out, nil
}

// DeleteForProduct removes every Access and LessonProduct row of a product.
func DeleteForProduct(ctx context.Context, db *gorm.DB, productID uuid.UUID) error {
	if err := db.WithContext(ctx).Where("product_id = ?", productID).Delete(&Access{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Where("product_id = ?", productID).Delete(&LessonProduct{}).Error
}
