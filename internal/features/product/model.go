package product

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/access"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/user"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/view"
	"github.com/mo-amir99/coursetrack-server-go/pkg/types"
)

const maxTitleLength = 100

// Product is a bundle of lessons granted to users as a unit.
type Product struct {
	types.BaseModel

	Title   string    `gorm:"type:varchar(100);not null" json:"title"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;column:owner_id;index" json:"ownerId"`
}

// TableName overrides the default table name.
func (Product) TableName() string { return "products" }

// CreateInput carries data for creating a new product.
type CreateInput struct {
	Title        string
	Usernames    []string
	LessonTitles []string
}

// Summary is the list representation of a product.
type Summary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Owner         string    `json:"owner"`
	Access        []string  `json:"access"`
	Lessons       []string  `json:"lessons"`
	LinkToProduct string    `json:"link_to_product"`
}

// LessonProgress is one lesson of a product with the caller's progress.
type LessonProgress struct {
	Title string `json:"title"`
	view.Progress
}

// Detail is a product as retrieved by one user.
type Detail struct {
	ID      uuid.UUID        `json:"id"`
	Title   string           `json:"title"`
	Lessons []LessonProgress `json:"lessons"`
}

// Get loads a product by ID.
func Get(ctx context.Context, db *gorm.DB, id uuid.UUID) (Product, error) {
	var p Product
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, ErrProductNotFound
		}
		return p, err
	}
	return p, nil
}

// ListForUser returns the products the user holds access to, oldest first.
func ListForUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]Product, error) {
	products := []Product{}

	ids, err := access.ProductIDsForUser(ctx, db, userID)
	if err != nil || len(ids) == 0 {
		return products, err
	}

	err = db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&products).Error
	return products, err
}

// Create inserts a product owned by ownerID together with its lessons, access grants and the
// missing views of every granted user on every lesson. Unknown usernames or lesson titles
// abort the whole operation before anything is written.
func Create(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, input CreateInput, now time.Time) (Product, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Product{}, ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return Product{}, ErrTitleLength
	}

	var p Product
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lessons, err := lesson.FindByTitles(ctx, tx, Dedupe(input.LessonTitles))
		if err != nil {
			return err
		}
		users, err := user.FindByUsernames(ctx, tx, Dedupe(input.Usernames))
		if err != nil {
			return err
		}

		p = Product{Title: title, OwnerID: ownerID}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}

		lessonIDs := make([]uuid.UUID, 0, len(lessons))
		for _, l := range lessons {
			lessonIDs = append(lessonIDs, l.ID)
		}
		userIDs := make([]uuid.UUID, 0, len(users))
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}

		if err := access.Attach(ctx, tx, p.ID, lessonIDs); err != nil {
			return err
		}
		if err := access.Grant(ctx, tx, p.ID, userIDs); err != nil {
			return err
		}

		keys := make([]view.Key, 0, len(userIDs)*len(lessonIDs))
		for _, userID := range userIDs {
			for _, lessonID := range lessonIDs {
				keys = append(keys, view.Key{UserID: userID, LessonID: lessonID})
			}
		}
		return view.Ensure(ctx, tx, keys, now)
	})
	return p, err
}

// Delete removes a product owned by userID with its access grants and lesson links.
// Views are kept. Products owned by someone else are reported as not found.
func Delete(ctx context.Context, db *gorm.DB, userID, productID uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := Get(ctx, tx, productID)
		if err != nil {
			return err
		}
		if p.OwnerID != userID {
			return ErrProductNotFound
		}

		if err := access.DeleteForProduct(ctx, tx, p.ID); err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

// Summaries assembles list items for the given products with batch lookups.
// Access usernames and lesson titles are sorted.
// basePath is the collection path each link_to_product is built from.
func Summaries(ctx context.Context, db *gorm.DB, products []Product, basePath string) ([]Summary, error) {
	summaries := make([]Summary, 0, len(products))
	if len(products) == 0 {
		return summaries, nil
	}

	productIDs := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
	}

	usersByProduct, err := access.UsersByProduct(ctx, db, productIDs)
	if err != nil {
		return nil, err
	}
	lessonsByProduct, err := access.LessonsByProduct(ctx, db, productIDs)
	if err != nil {
		return nil, err
	}

	var userIDs, lessonIDs []uuid.UUID
	for _, p := range products {
		userIDs = append(userIDs, p.OwnerID)
		userIDs = append(userIDs, usersByProduct[p.ID]...)
		lessonIDs = append(lessonIDs, lessonsByProduct[p.ID]...)
	}

	usernames, err := user.UsernamesByID(ctx, db, userIDs)
	if err != nil {
		return nil, err
	}
	titles, err := lesson.TitlesByID(ctx, db, lessonIDs)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(basePath, "/")
	for _, p := range products {
		s := Summary{
			ID:            p.ID,
			Title:         p.Title,
			Owner:         usernames[p.OwnerID],
			Access:        make([]string, 0, len(usersByProduct[p.ID])),
			Lessons:       make([]string, 0, len(lessonsByProduct[p.ID])),
			LinkToProduct: base + "/" + p.ID.String() + "/",
		}
		for _, id := range usersByProduct[p.ID] {
			s.Access = append(s.Access, usernames[id])
		}
		for _, id := range lessonsByProduct[p.ID] {
			s.Lessons = append(s.Lessons, titles[id])
		}
		sort.Strings(s.Access)
		sort.Strings(s.Lessons)
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// DetailForUser returns a product with the user's progress on each of its lessons, by title.
// Only the owner and users with access may see it. A lesson the user holds no view of fails
// with view.ErrViewNotFound.
func DetailForUser(ctx context.Context, db *gorm.DB, userID, productID uuid.UUID) (Detail, error) {
	p, err := Get(ctx, db, productID)
	if err != nil {
		return Detail{}, err
	}

	if p.OwnerID != userID {
		ok, err := access.HasAccess(ctx, db, userID, p.ID)
		if err != nil {
			return Detail{}, err
		}
		if !ok {
			return Detail{}, ErrProductNotFound
		}
	}

	byProduct, err := access.LessonsByProduct(ctx, db, []uuid.UUID{p.ID})
	if err != nil {
		return Detail{}, err
	}
	lessonIDs := byProduct[p.ID]

	titles, err := lesson.TitlesByID(ctx, db, lessonIDs)
	if err != nil {
		return Detail{}, err
	}
	views, err := view.ForUser(ctx, db, userID, lessonIDs)
	if err != nil {
		return Detail{}, err
	}

	detail := Detail{ID: p.ID, Title: p.Title, Lessons: make([]LessonProgress, 0, len(lessonIDs))}
	for _, id := range lessonIDs {
		v, ok := views[id]
		if !ok {
			return Detail{}, view.ErrViewNotFound
		}
		detail.Lessons = append(detail.Lessons, LessonProgress{Title: titles[id], Progress: view.ProgressOf(v)})
	}
	sort.Slice(detail.Lessons, func(i, j int) bool {
		return detail.Lessons[i].Title < detail.Lessons[j].Title
	})
	return detail, nil
}

// Dedupe trims values and drops blanks and repeats, keeping first occurrences in order.
func Dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
