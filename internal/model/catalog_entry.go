package model

import "time"

const (
	EntryKindText  = "text"
	EntryKindImage = "image"
	EntryKindVideo = "video"
)

// CatalogEntry is one row of label content kept in MySQL.
type CatalogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Label     string    `gorm:"size:128;not null;index:idx_label_kind_pos,priority:1" json:"label"`
	Kind      string    `gorm:"size:16;not null;index:idx_label_kind_pos,priority:2" json:"kind"`
	Position  int       `gorm:"not null;index:idx_label_kind_pos,priority:3" json:"position"`
	Value     string    `gorm:"type:mediumtext;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
