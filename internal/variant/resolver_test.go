package variant_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/variant"
)

func colours() variant.Group {
	return variant.Group{Label: "Color", Kind: variant.KindColor, Options: []variant.Option{
		{Name: "Midnight Black", ColorValue: "#000000"},
		{Name: "Ocean Blue", ColorValue: "bg-blue-600"},
		{Name: "Forest Green", ColorValue: "#228B22", Disabled: true},
	}}
}

func sizes() variant.Group {
	return variant.Group{Label: "Size", Kind: variant.KindSize, Options: []variant.Option{
		{Name: "S"},
		{Name: "M", StockInfo: "Low stock"},
		{Name: "L"},
		{Name: "XL", Disabled: true, StockInfo: "Out of stock"},
	}}
}

func TestSelectOptionIgnoresDisabledAndUnknown(t *testing.T) {
	r := variant.NewResolver()
	require.True(t, r.SelectOption(colours(), "Midnight Black"))

	require.False(t, r.SelectOption(colours(), "Forest Green"))
	require.False(t, r.SelectOption(colours(), "Neon Pink"))

	got, ok := r.Selected("Color")
	require.True(t, ok)
	require.Equal(t, "Midnight Black", got)
}

func TestSelectOptionRejectsUnknownKind(t *testing.T) {
	r := variant.NewResolver()
	g := variant.Group{Label: "Material", Kind: "fabric", Options: []variant.Option{{Name: "Wool"}}}
	require.False(t, r.SelectOption(g, "Wool"))
	require.Empty(t, r.Selection())
}

func TestIsComplete(t *testing.T) {
	groups := []variant.Group{colours(), sizes()}
	r := variant.NewResolver()
	require.False(t, r.IsComplete(groups))

	r.SelectOption(colours(), "Ocean Blue")
	require.False(t, r.IsComplete(groups))

	r.SelectOption(sizes(), "XL")
	require.False(t, r.IsComplete(groups), "disabled size must not complete the selection")

	r.SelectOption(sizes(), "M")
	require.True(t, r.IsComplete(groups))
	require.True(t, r.IsComplete(nil))
}

func TestIsCompleteRechecksAvailability(t *testing.T) {
	r := variant.NewResolver()
	r.SelectOption(sizes(), "L")

	soldOut := sizes()
	soldOut.Options[2].Disabled = true
	require.False(t, r.IsComplete([]variant.Group{soldOut}))
}

func TestDescribeAndKey(t *testing.T) {
	r := variant.NewResolver()
	r.SelectOption(sizes(), "L")
	r.SelectOption(colours(), "Midnight Black")

	require.Equal(t, "Color: Midnight Black, Size: L", r.Describe([]variant.Group{colours(), sizes()}))
	require.Equal(t, "color=midnight-black;size=l", r.Key())

	r.Clear("Size")
	require.Equal(t, "Color: Midnight Black", r.Describe([]variant.Group{colours(), sizes()}))
}

func TestSelectionSnapshotIsDetached(t *testing.T) {
	r := variant.NewResolver()
	r.SelectOption(colours(), "Ocean Blue")
	r.SelectOption(sizes(), "S")
	groups := []variant.Group{colours(), sizes()}

	sel := r.Selection()
	r.SelectOption(sizes(), "L")

	require.True(t, sel.Complete(groups))
	require.Equal(t, "Color: Ocean Blue, Size: S", sel.Describe(groups))
	require.Equal(t, "Color: Ocean Blue, Size: L", r.Describe(groups))
	require.False(t, variant.Selection{"Color": "Ocean Blue"}.Complete(groups))
}

func TestGroupPresentation(t *testing.T) {
	c := colours()
	require.Equal(t, "#000000", c.Swatch(c.Options[0]))
	require.Empty(t, c.Swatch(c.Options[1]))

	s := sizes()
	require.Equal(t, "M (Low stock)", s.Title(s.Options[1]))
	require.Equal(t, "S", s.Title(s.Options[0]))
	require.Empty(t, s.Swatch(s.Options[0]))

	first, ok := s.FirstAvailable()
	require.True(t, ok)
	require.Equal(t, "S", first.Name)
}
