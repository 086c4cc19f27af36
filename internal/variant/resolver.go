package variant

import (
	"sort"
	"strings"
	"sync"
)

// Selection maps a group label to the selected option name.
type Selection map[string]string

// Resolver owns the selection state for one product.
type Resolver struct {
	mu       sync.RWMutex
	selected Selection
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{selected: Selection{}}
}

// SelectOption records optionName for the group. Unknown or disabled options
// leave the state untouched. It reports whether the selection was applied.
func (r *Resolver) SelectOption(group Group, optionName string) bool {
	if !group.Kind.Valid() {
		return false
	}
	opt, ok := group.Option(optionName)
	if !ok || opt.Disabled {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == nil {
		r.selected = Selection{}
	}
	r.selected[group.Label] = opt.Name
	return true
}

// Clear removes the selection for a group.
func (r *Resolver) Clear(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.selected, label)
}

// Selected returns the option name selected for the group label.
func (r *Resolver) Selected(label string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.selected[label]
	return name, ok
}

// Selection returns a copy of the current state.
func (r *Resolver) Selection() Selection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(Selection, len(r.selected))
	for k, v := range r.selected {
		out[k] = v
	}
	return out
}

// IsComplete reports whether every required group holds a selection that
// exists in the group and is not disabled. Option availability is read from
// the groups passed in, so an option disabled after it was chosen makes the
// selection incomplete again.
func (r *Resolver) IsComplete(required []Group) bool {
	return r.Selection().Complete(required)
}

// Describe renders the current selection; see Selection.Describe.
func (r *Resolver) Describe(groups []Group) string {
	return r.Selection().Describe(groups)
}

// Complete reports whether s picks an available option in every group.
func (s Selection) Complete(required []Group) bool {
	for _, g := range required {
		name, ok := s[g.Label]
		if !ok {
			return false
		}
		opt, ok := g.Option(name)
		if !ok || opt.Disabled {
			return false
		}
	}
	return true
}

// Describe renders s as "Color: Midnight Black, Size: L" in group order.
// Groups without a selection are skipped.
func (s Selection) Describe(groups []Group) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		if name, ok := s[g.Label]; ok {
			parts = append(parts, g.Label+": "+name)
		}
	}
	return strings.Join(parts, ", ")
}

// Key returns a stable, order-independent identifier for the selection.
func (r *Resolver) Key() string {
	sel := r.Selection()
	labels := make([]string, 0, len(sel))
	for label := range sel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, slug(label)+"="+slug(sel[label]))
	}
	return strings.Join(parts, ";")
}

func slug(v string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), " ", "-")
}
