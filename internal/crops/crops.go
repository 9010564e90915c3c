// Package crops holds the crop catalog and the selection buffer used by the
// crop picker.
package crops

import "errors"

// MaxSelected is the most crops a farmer can track at once.
const MaxSelected = 8

var (
	// ErrTooMany is returned when a selection would exceed MaxSelected.
	ErrTooMany = errors.New("too many crops selected")
	// ErrDuplicate is returned when a selection repeats a crop.
	ErrDuplicate = errors.New("duplicate crop in selection")
)

// Crop is one entry of the catalog. NameKey is the translation key.
type Crop struct {
	ID      string
	NameKey string
	Emoji   string
}

var catalog = []Crop{
	{ID: "tomato", NameKey: "tomato", Emoji: "🍅"},
	{ID: "wheat", NameKey: "wheat", Emoji: "🌾"},
	{ID: "rice", NameKey: "rice", Emoji: "🍚"},
	{ID: "onion", NameKey: "onion", Emoji: "🧅"},
	{ID: "potato", NameKey: "potato", Emoji: "🥔"},
	{ID: "corn", NameKey: "corn", Emoji: "🌽"},
	{ID: "cotton", NameKey: "cotton", Emoji: "☁️"},
	{ID: "sugarcane", NameKey: "sugarcane", Emoji: "🎋"},
	{ID: "banana", NameKey: "banana", Emoji: "🍌"},
	{ID: "mango", NameKey: "mango", Emoji: "🥭"},
	{ID: "apple", NameKey: "apple", Emoji: "🍎"},
	{ID: "grape", NameKey: "grape", Emoji: "🍇"},
}

// Catalog returns the selectable crops in display order.
func Catalog() []Crop {
	out := make([]Crop, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (Crop, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Crop{}, false
}

// Known reports whether id is in the catalog.
func Known(id string) bool {
	_, ok := Lookup(id)
	return ok
}

// Emoji returns the icon for id, or a seedling for crops outside the catalog.
func Emoji(id string) string {
	if c, ok := Lookup(id); ok {
		return c.Emoji
	}
	return "🌱"
}

// Validate checks a crop list against the selection invariants.
func Validate(ids []string) error {
	if len(ids) > MaxSelected {
		return ErrTooMany
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrDuplicate
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Selection is the working buffer of the crop picker. It keeps insertion
// order and never holds more than MaxSelected unique crops.
type Selection struct {
	ids []string
}

// NewSelection seeds a buffer from existing crops. Duplicates are dropped and
// the list is truncated to MaxSelected.
func NewSelection(existing []string) *Selection {
	s := &Selection{}
	for _, id := range existing {
		if s.Contains(id) || len(s.ids) >= MaxSelected {
			continue
		}
		s.ids = append(s.ids, id)
	}
	return s
}

// Toggle adds id when absent and removes it when present. Adding past the
// limit and toggling ids outside the catalog do nothing. It reports whether
// the buffer changed.
func (s *Selection) Toggle(id string) bool {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true
		}
	}
	if !Known(id) || len(s.ids) >= MaxSelected {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Len returns the number of selected crops.
func (s *Selection) Len() int { return len(s.ids) }

// Full reports whether the buffer is at the limit.
func (s *Selection) Full() bool { return len(s.ids) >= MaxSelected }

// IDs returns a copy of the selection in insertion order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
