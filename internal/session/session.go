// Package session keeps per-visitor state between interactions.
package session

import (
	"context"
	"time"

	"photolabel/internal/vision"
)

// State is everything remembered for one visitor. The zero value is an idle session.
type State struct {
	Image         []byte             `json:"image,omitempty"`
	ImageFormat   string             `json:"image_format,omitempty"`
	ImageSource   string             `json:"image_source,omitempty"`
	Prediction    *vision.Prediction `json:"prediction,omitempty"`
	SelectedLabel string             `json:"selected_label,omitempty"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Store persists State by session id. Get reports found=false for unknown ids.
type Store interface {
	Get(ctx context.Context, id string) (State, bool, error)
	Save(ctx context.Context, id string, state State) error
	Ping(ctx context.Context) error
}
