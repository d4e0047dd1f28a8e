package lesson

import (
	"errors"
	"fmt"
)

var (
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrTitleRequired      = errors.New("lesson title is required")
	ErrTitleLength        = errors.New("lesson title cannot exceed 100 characters")
	ErrTitleTaken         = errors.New("a lesson with this title already exists")
	ErrVideoLinkInvalid   = errors.New("video link must be an absolute http or https URL")
	ErrDurationInvalid    = errors.New("lesson duration must be a positive number of seconds")
	ErrViewingTimeInvalid = errors.New("viewing time must be a non-negative integer")
)

// MissingError reports a lesson title that does not resolve to a lesson.
type MissingError struct {
	Title string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("lesson %q not found", e.Title)
}

// Is lets errors.Is(err, ErrLessonNotFound) match.
func (e *MissingError) Is(target error) bool {
	return target == ErrLessonNotFound
}
