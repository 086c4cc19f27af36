// Package variant tracks product variant selection per group and enforces the
// disabled-option rule. Invalid selection attempts are ignored rather than
// reported: a disabled button in the UI is not an error condition.
package variant

import "strings"

// Kind tags the dimension a group selects over.
type Kind string

const (
	KindColor Kind = "color"
	KindSize  Kind = "size"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindColor, KindSize:
		return true
	default:
		return false
	}
}

// Option is one selectable value within a group.
type Option struct {
	Name       string `json:"name"`
	Disabled   bool   `json:"disabled"`
	StockInfo  string `json:"stockInfo,omitempty"`
	ColorValue string `json:"colorValue,omitempty"`
}

// Group is a mutually exclusive set of options, e.g. "Color" or "Size".
type Group struct {
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Options []Option `json:"options"`
}

// Option returns the named option.
func (g Group) Option(name string) (Option, bool) {
	for _, opt := range g.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}

// FirstAvailable returns the first option that is not disabled.
func (g Group) FirstAvailable() (Option, bool) {
	for _, opt := range g.Options {
		if !opt.Disabled {
			return opt, true
		}
	}
	return Option{}, false
}

// Title renders the option the way its kind is presented: colour swatches
// show the name, sizes append the stock hint.
func (g Group) Title(opt Option) string {
	switch g.Kind {
	case KindSize:
		if info := strings.TrimSpace(opt.StockInfo); info != "" {
			return opt.Name + " (" + info + ")"
		}
		return opt.Name
	default:
		return opt.Name
	}
}

// Swatch returns the CSS colour of a colour option. Values that are not hex or
// rgb() literals are style classes and yield "".
func (g Group) Swatch(opt Option) string {
	if g.Kind != KindColor {
		return ""
	}
	v := strings.TrimSpace(opt.ColorValue)
	if strings.HasPrefix(v, "#") || strings.HasPrefix(v, "rgb") {
		return v
	}
	return ""
}
