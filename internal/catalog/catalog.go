// Package catalog holds the static label → display content table.
package catalog

import (
	"sort"
	"strings"
)

// MaxItems is the number of entries kept per category for a label.
const MaxItems = 3

// Bundle is the display payload for one label.
type Bundle struct {
	Texts  []string `json:"texts"`
	Images []string `json:"images"`
	Videos []string `json:"videos"`
}

// Empty reports whether the bundle has nothing to show.
func (b Bundle) Empty() bool {
	return len(b.Texts) == 0 && len(b.Images) == 0 && len(b.Videos) == 0
}

// RawBundle is a declared catalog entry before filtering. Values may be of any
// type; only non-blank strings survive.
type RawBundle struct {
	Texts  []any `toml:"texts"`
	Images []any `toml:"images"`
	Videos []any `toml:"videos"`
}

type Options struct {
	// MaxImageRefBytes drops image references longer than this. Zero disables the cap.
	MaxImageRefBytes int
}

// Catalog maps labels to bundles. It is immutable after New.
type Catalog struct {
	bundles map[string]Bundle
}

// New filters and truncates every declared entry.
func New(table map[string]RawBundle, opts Options) *Catalog {
	bundles := make(map[string]Bundle, len(table))
	for label, raw := range table {
		images := usable(raw.Images)
		if opts.MaxImageRefBytes > 0 {
			images = capLength(images, opts.MaxImageRefBytes)
		}
		bundles[label] = Bundle{
			Texts:  top(usable(raw.Texts)),
			Images: top(images),
			Videos: top(usable(raw.Videos)),
		}
	}
	return &Catalog{bundles: bundles}
}

// Lookup returns the bundle for label, or an empty bundle when the label has no entry.
func (c *Catalog) Lookup(label string) Bundle {
	b, ok := c.bundles[label]
	if !ok {
		return Bundle{Texts: []string{}, Images: []string{}, Videos: []string{}}
	}
	return Bundle{
		Texts:  append([]string{}, b.Texts...),
		Images: append([]string{}, b.Images...),
		Videos: append([]string{}, b.Videos...),
	}
}

// Labels returns the declared labels in sorted order.
func (c *Catalog) Labels() []string {
	out := make([]string, 0, len(c.bundles))
	for label := range c.bundles {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Report lists mismatches between the catalog and a classifier vocabulary.
type Report struct {
	UnknownKeys   []string // declared but never produced by the classifier
	MissingLabels []string // produced by the classifier but without content
}

func (r Report) OK() bool {
	return len(r.UnknownKeys) == 0 && len(r.MissingLabels) == 0
}

// Validate compares the declared keys against the classifier vocabulary.
func (c *Catalog) Validate(vocabulary []string) Report {
	known := make(map[string]struct{}, len(vocabulary))
	var report Report
	for _, label := range vocabulary {
		known[label] = struct{}{}
		if _, ok := c.bundles[label]; !ok {
			report.MissingLabels = append(report.MissingLabels, label)
		}
	}
	for _, label := range c.Labels() {
		if _, ok := known[label]; !ok {
			report.UnknownKeys = append(report.UnknownKeys, label)
		}
	}
	return report
}

func usable(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func capLength(values []string, limit int) []string {
	out := values[:0]
	for _, v := range values {
		if len(v) <= limit {
			out = append(out, v)
		}
	}
	return out
}

func top(values []string) []string {
	if len(values) > MaxItems {
		return values[:MaxItems]
	}
	return values
}
