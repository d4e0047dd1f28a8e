package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/coursetrack-server-go/pkg/types"
)

// User mirrors an identity owned by the external identity provider.
type User struct {
	types.BaseModel

	Username string `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// Sync upserts the mirror row for a verified identity and returns it.
// A username change at the provider is copied over on the next request.
func Sync(ctx context.Context, db *gorm.DB, id uuid.UUID, username string) (User, error) {
	username = strings.TrimSpace(username)
	if id == uuid.Nil {
		return User{}, ErrInvalidIdentity
	}
	if username == "" {
		return User{}, ErrUsernameRequired
	}

	usr := User{BaseModel: types.BaseModel{ID: id}, Username: username}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(&usr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, ErrUsernameTaken
		}
		return User{}, err
	}

	return usr, nil
}

// FindByUsernames resolves every username or fails with a *MissingError naming the first absent one.
// The result preserves the order of the (deduplicated) input.
func FindByUsernames(ctx context.Context, db *gorm.DB, usernames []string) ([]User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}

	var found []User
	if err := db.WithContext(ctx).Where("username IN ?", usernames).Find(&found).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]User, len(found))
	for _, usr := range found {
		byName[usr.Username] = usr
	}

	ordered := make([]User, 0, len(usernames))
	for _, name := range usernames {
		usr, ok := byName[name]
		if !ok {
			return nil, &MissingError{Username: name}
		}
		ordered = append(ordered, usr)
	}
	return ordered, nil
}

// UsernamesByID returns id -> username for the given IDs.
func UsernamesByID(ctx context.Context, db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []User
	if err := db.WithContext(ctx).Select("id", "username").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Username
	}
	return names, nil
}

// Count returns the number of known users.
func Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&User{}).Count(&total).Error
	return total, err
}
