package product

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/user"
)

// coefficientPlaces is the precision of the buy coefficient.
const coefficientPlaces = 4

// Statistic is the engagement summary of one product.
type Statistic struct {
	Title           string  `json:"title"`
	CountViewing    int64   `json:"count_viewing"`
	AllTimeViewings int64   `json:"all_time_viewings"`
	CountStudents   int64   `json:"count_students"`
	BuyCoefficient  float64 `json:"buy_coefficient_product"`
}

// Aggregate holds the per-product figures of a Statistic. They change only with product,
// access, lesson or view writes, so they are what the statistics cache stores.
type Aggregate struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	CountViewing    int64     `json:"count_viewing"`
	AllTimeViewings int64     `json:"all_time_viewings"`
	CountStudents   int64     `json:"count_students"`
}

// Views are counted over (lesson of the product) x (user with access) pairs only.
const statisticsQuery = `
SELECT p.id, p.title,
	(SELECT COUNT(*)
		FROM lesson_products lp
		JOIN accesses a ON a.product_id = lp.product_id
		JOIN views v ON v.lesson_id = lp.lesson_id AND v.user_id = a.user_id
		WHERE lp.product_id = p.id AND v.status = ?) AS count_viewing,
	(SELECT CAST(COALESCE(SUM(v.viewing_time), 0) AS BIGINT)
		FROM lesson_products lp
		JOIN accesses a ON a.product_id = lp.product_id
		JOIN views v ON v.lesson_id = lp.lesson_id AND v.user_id = a.user_id
		WHERE lp.product_id = p.id) AS all_time_viewings,
	(SELECT COUNT(DISTINCT a.user_id)
		FROM accesses a
		WHERE a.product_id = p.id) AS count_students
FROM products p
ORDER BY p.created_at ASC, p.id ASC`

// Aggregates runs the aggregating query over every product.
func Aggregates(ctx context.Context, db *gorm.DB) ([]Aggregate, error) {
	rows := []Aggregate{}
	if err := db.WithContext(ctx).Raw(statisticsQuery, true).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// WithCoefficients completes aggregates with the buy coefficient against the current user
// count. The user count is read on every call since identity sync adds users at any time.
func WithCoefficients(ctx context.Context, db *gorm.DB, rows []Aggregate) ([]Statistic, error) {
	stats := make([]Statistic, 0, len(rows))
	if len(rows) == 0 {
		return stats, nil
	}

	totalUsers, err := user.Count(ctx, db)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats = append(stats, Statistic{
			Title:           row.Title,
			CountViewing:    row.CountViewing,
			AllTimeViewings: row.AllTimeViewings,
			CountStudents:   row.CountStudents,
			BuyCoefficient:  BuyCoefficient(row.CountStudents, totalUsers),
		})
	}
	return stats, nil
}

// BuyCoefficient is the share of all users holding access, rounded to four places.
// It is zero when there are no users.
func BuyCoefficient(students, totalUsers int64) float64 {
	if totalUsers <= 0 {
		return 0
	}
	ratio := decimal.NewFromInt(students).DivRound(decimal.NewFromInt(totalUsers), coefficientPlaces)
	return ratio.InexactFloat64()
}
