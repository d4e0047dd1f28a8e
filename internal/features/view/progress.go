package view

import (
	"time"

	"github.com/mo-amir99/coursetrack-server-go/pkg/types"
)

// Progress is the caller-specific part of a lesson response.
type Progress struct {
	Status          types.ViewStatus `json:"status"`
	ViewingTime     int              `json:"viewing_time"`
	LastViewingTime time.Time        `json:"last_viewing_time"`
}

// ProgressOf renders a stored view for responses.
func ProgressOf(v View) Progress {
	return Progress{
		Status:          types.StatusFor(v.Status),
		ViewingTime:     v.ViewingTime,
		LastViewingTime: v.LastViewingTime,
	}
}
