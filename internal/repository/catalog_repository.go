package repository

import (
	"fmt"

	"gorm.io/gorm"

	"photolabel/internal/catalog"
	"photolabel/internal/model"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListAll() ([]model.CatalogEntry, error) {
	var entries []model.CatalogEntry
	if err := r.db.Order("label ASC, kind ASC, position ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list catalog entries failed: %w", err)
	}
	return entries, nil
}

// LoadTable reads every row and groups it into the declared catalog table.
func (r *CatalogRepository) LoadTable() (map[string]catalog.RawBundle, error) {
	entries, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	return GroupEntries(entries), nil
}

// GroupEntries folds rows into per-label bundles. Rows must already be ordered by position.
func GroupEntries(entries []model.CatalogEntry) map[string]catalog.RawBundle {
	table := make(map[string]catalog.RawBundle)
	for _, e := range entries {
		b := table[e.Label]
		switch e.Kind {
		case model.EntryKindText:
			b.Texts = append(b.Texts, e.Value)
		case model.EntryKindImage:
			b.Images = append(b.Images, e.Value)
		case model.EntryKindVideo:
			b.Videos = append(b.Videos, e.Value)
		default:
			continue
		}
		table[e.Label] = b
	}
	return table
}
