package lesson

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/access"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/view"
	"github.com/mo-amir99/coursetrack-server-go/pkg/request"
	"github.com/mo-amir99/coursetrack-server-go/pkg/types"
)

const maxTitleLength = 100

// Lesson is a single video unit.
type Lesson struct {
	types.BaseModel

	Title     string `gorm:"type:varchar(100);not null;uniqueIndex" json:"title"`
	VideoLink string `gorm:"type:varchar(500);not null;column:video_link" json:"video_link"`
	Duration  int    `gorm:"type:int;not null" json:"duration"` // seconds
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	Title     string
	VideoLink string
	Duration  int
}

// UpdateInput captures mutable lesson fields. Nil fields are left untouched.
type UpdateInput struct {
	VideoLink   *string
	Duration    *int
	ViewingTime *int
}

// Detail is a lesson together with the caller's raw progress on it.
type Detail struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	VideoLink       string    `json:"video_link"`
	Duration        int       `json:"duration"`
	Status          bool      `json:"status"`
	ViewingTime     int       `json:"viewing_time"`
	LastViewingTime time.Time `json:"last_viewing_time"`
}

// Item is a lesson as listed for the caller, with a status label.
type Item struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	VideoLink string    `json:"video_link"`
	Duration  int       `json:"duration"`
	view.Progress
}

// DetailOf joins a lesson with a view of it.
func DetailOf(l Lesson, v view.View) Detail {
	return Detail{
		ID:              l.ID,
		Title:           l.Title,
		VideoLink:       l.VideoLink,
		Duration:        l.Duration,
		Status:          v.Status,
		ViewingTime:     v.ViewingTime,
		LastViewingTime: v.LastViewingTime,
	}
}

// Get loads a lesson by ID.
func Get(ctx context.Context, db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var l Lesson
	if err := db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return l, ErrLessonNotFound
		}
		return l, err
	}
	return l, nil
}

// ListByIDs loads the given lessons ordered by title.
func ListByIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]Lesson, error) {
	lessons := make([]Lesson, 0, len(ids))
	if len(ids) == 0 {
		return lessons, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Order("title ASC").Find(&lessons).Error
	return lessons, err
}

// FindByTitles resolves every title or fails with a *MissingError naming the first absent one.
// The result preserves the order of the input.
func FindByTitles(ctx context.Context, db *gorm.DB, titles []string) ([]Lesson, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	var found []Lesson
	if err := db.WithContext(ctx).Where("title IN ?", titles).Find(&found).Error; err != nil {
		return nil, err
	}

	byTitle := make(map[string]Lesson, len(found))
	for _, l := range found {
		byTitle[l.Title] = l
	}

	ordered := make([]Lesson, 0, len(titles))
	for _, title := range titles {
		l, ok := byTitle[title]
		if !ok {
			return nil, &MissingError{Title: title}
		}
		ordered = append(ordered, l)
	}
	return ordered, nil
}

// TitlesByID returns id -> title for the given IDs.
func TitlesByID(ctx context.Context, db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	titles := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	var rows []Lesson
	if err := db.WithContext(ctx).Select("id", "title").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		titles[row.ID] = row.Title
	}
	return titles, nil
}

// Create inserts a lesson after validating its fields.
func Create(ctx context.Context, db *gorm.DB, input CreateInput) (Lesson, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(title); err != nil {
		return Lesson{}, err
	}

	link := strings.TrimSpace(input.VideoLink)
	if !request.IsVideoURL(link) {
		return Lesson{}, ErrVideoLinkInvalid
	}
	if input.Duration <= 0 {
		return Lesson{}, ErrDurationInvalid
	}

	l := Lesson{Title: title, VideoLink: link, Duration: input.Duration}
	if err := db.WithContext(ctx).Create(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Lesson{}, ErrTitleTaken
		}
		return Lesson{}, err
	}
	return l, nil
}

// CreateForUser inserts a lesson and a not-started view of it for the creator, atomically.
func CreateForUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, input CreateInput, now time.Time) (Detail, error) {
	var detail Detail
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := Create(ctx, tx, input)
		if err != nil {
			return err
		}

		if err := view.Ensure(ctx, tx, []view.Key{{UserID: userID, LessonID: l.ID}}, now); err != nil {
			return err
		}

		v, err := view.Get(ctx, tx, userID, l.ID)
		if err != nil {
			return err
		}

		detail = DetailOf(l, v)
		return nil
	})
	return detail, err
}

// Update applies lesson field changes and, when a viewing time is supplied, records the
// caller's progress against the resulting duration. Everything happens in one transaction.
// completed reports a transition of the caller's view into the completed state.
func Update(ctx context.Context, db *gorm.DB, userID, lessonID uuid.UUID, input UpdateInput, now time.Time) (detail Detail, completed bool, err error) {
	if input.Duration != nil && *input.Duration <= 0 {
		return Detail{}, false, ErrDurationInvalid
	}
	if input.ViewingTime != nil && *input.ViewingTime < 0 {
		return Detail{}, false, ErrViewingTimeInvalid
	}

	var link string
	if input.VideoLink != nil {
		link = strings.TrimSpace(*input.VideoLink)
		if !request.IsVideoURL(link) {
			return Detail{}, false, ErrVideoLinkInvalid
		}
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := Get(ctx, tx, lessonID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if input.VideoLink != nil {
			updates["video_link"] = link
			l.VideoLink = link
		}
		if input.Duration != nil {
			updates["duration"] = *input.Duration
			l.Duration = *input.Duration
		}
		if len(updates) > 0 {
			if err := tx.Model(&l).Updates(updates).Error; err != nil {
				return err
			}
		}

		before, err := view.Get(ctx, tx, userID, lessonID)
		if err != nil {
			return err
		}

		after := before
		if input.ViewingTime != nil {
			after, err = view.RecordProgress(ctx, tx, userID, lessonID, *input.ViewingTime, l.Duration, now)
			if err != nil {
				return err
			}
		}

		completed = !before.Status && after.Status
		detail = DetailOf(l, after)
		return nil
	})
	return detail, completed, err
}

// ListForUser returns the lessons of every product the user has access to, each with the
// user's progress. A visible lesson the user holds no view of fails with view.ErrViewNotFound.
func ListForUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]Item, error) {
	ids, err := access.VisibleLessonIDs(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	lessons, err := ListByIDs(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	views, err := view.ForUser(ctx, db, userID, ids)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(lessons))
	for _, l := range lessons {
		v, ok := views[l.ID]
		if !ok {
			return nil, view.ErrViewNotFound
		}
		items = append(items, Item{
			ID:        l.ID,
			Title:     l.Title,
			VideoLink: l.VideoLink,
			Duration:  l.Duration,
			Progress:  view.ProgressOf(v),
		})
	}
	return items, nil
}

// DetailForUser returns a lesson with the user's progress. Lessons the user neither holds a
// view of nor can see through a product are reported as not found.
func DetailForUser(ctx context.Context, db *gorm.DB, userID, lessonID uuid.UUID) (Detail, error) {
	l, err := Get(ctx, db, lessonID)
	if err != nil {
		return Detail{}, err
	}

	v, err := view.Get(ctx, db, userID, lessonID)
	if err == nil {
		return DetailOf(l, v), nil
	}
	if !errors.Is(err, view.ErrViewNotFound) {
		return Detail{}, err
	}

	visible, verr := access.CanSeeLesson(ctx, db, userID, lessonID)
	if verr != nil {
		return Detail{}, verr
	}
	if !visible {
		return Detail{}, ErrLessonNotFound
	}
	return Detail{}, err
}

func validateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrTitleLength
	}
	return nil
}
