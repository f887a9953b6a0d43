package repository

import (
	"testing"

	"photolabel/internal/catalog"
	"photolabel/internal/model"
)

func TestGroupEntries(t *testing.T) {
	rows := []model.CatalogEntry{
		{Label: "cat", Kind: model.EntryKindText, Position: 0, Value: "x"},
		{Label: "cat", Kind: model.EntryKindText, Position: 1, Value: "y"},
		{Label: "cat", Kind: model.EntryKindVideo, Position: 0, Value: "https://youtu.be/dQw4w9WgXcQ"},
		{Label: "dog", Kind: "audio", Position: 0, Value: "ignored"},
	}

	table := GroupEntries(rows)
	if _, ok := table["dog"]; ok {
		t.Error("label with only unknown kinds should not be declared")
	}

	c := catalog.New(table, catalog.Options{})
	got := c.Lookup("cat")
	if len(got.Texts) != 2 || got.Texts[0] != "x" || got.Texts[1] != "y" {
		t.Errorf("Texts = %v", got.Texts)
	}
	if len(got.Videos) != 1 {
		t.Errorf("Videos = %v", got.Videos)
	}
	if len(got.Images) != 0 {
		t.Errorf("Images = %v", got.Images)
	}
}
