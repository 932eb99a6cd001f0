package catalog

import "strings"

// Separator joins the items of a multiple selection in a bound field.
const Separator = "; "

// Filter keeps the options whose code, description or short code contains
// query, ignoring case and accents. An empty query keeps everything.
func Filter(options []Option, query string) []Option {
	q := Fold(strings.TrimSpace(query))
	out := make([]Option, 0, len(options))
	for _, o := range options {
		if q == "" || strings.Contains(searchText(o), q) {
			out = append(out, o)
		}
	}
	return out
}

type Mode int

const (
	Single Mode = iota
	Multiple
)

// Selection is the value side of a searchable select: one option in Single
// mode, an ordered duplicate-free list in Multiple mode.
type Selection struct {
	mode  Mode
	items []Option
}

func NewSelection(mode Mode) *Selection {
	return &Selection{mode: mode}
}

// Pick selects o. Single mode replaces the current choice; Multiple mode
// appends o unless its code is already selected.
func (s *Selection) Pick(o Option) {
	if s.mode == Single {
		s.items = []Option{o}
		return
	}
	if s.Has(o.Code) {
		return
	}
	s.items = append(s.items, o)
}

func (s *Selection) Has(code string) bool {
	for _, it := range s.items {
		if strings.EqualFold(it.Code, code) {
			return true
		}
	}
	return false
}

// Remove drops the item with code and reports whether one was removed.
func (s *Selection) Remove(code string) bool {
	for i, it := range s.items {
		if strings.EqualFold(it.Code, code) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Selection) Clear() {
	s.items = nil
}

func (s *Selection) Items() []Option {
	out := make([]Option, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Selection) Len() int {
	return len(s.items)
}

// Value renders the selection the way it is stored in the form.
func (s *Selection) Value() string {
	labels := make([]string, len(s.items))
	for i, it := range s.items {
		labels[i] = it.Label()
	}
	return strings.Join(labels, Separator)
}

// ParseSelection rebuilds a selection from a stored value. Items without a
// " - " separator keep the whole text as their code.
func ParseSelection(value string, mode Mode) *Selection {
	s := NewSelection(mode)
	if strings.TrimSpace(value) == "" {
		return s
	}

	parts := []string{value}
	if mode == Multiple {
		parts = strings.Split(value, Separator)
	}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		code, desc, _ := strings.Cut(p, " - ")
		s.Pick(Option{Code: strings.TrimSpace(code), Description: strings.TrimSpace(desc)})
	}
	return s
}
