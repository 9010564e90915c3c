package schemes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(list []Scheme) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		category Category
		want     []string
	}{
		{"everything", "", All, []string{"PM-KISAN Samman Nidhi", "Pradhan Mantri Fasal Bima Yojana", "Kisan Credit Card", "Soil Health Card Scheme"}},
		{"subsidies", "", Subsidy, []string{"PM-KISAN Samman Nidhi", "Soil Health Card Scheme"}},
		{"loans", "", Loan, []string{"Kisan Credit Card"}},
		{"case insensitive", "KISAN", All, []string{"PM-KISAN Samman Nidhi", "Kisan Credit Card"}},
		{"query and category", "card", Subsidy, []string{"Soil Health Card Scheme"}},
		{"no match", "tractor", All, []string{}},
		{"empty category", "bima", "", []string{"Pradhan Mantri Fasal Bima Yojana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Filter(tt.query, tt.category)))
		})
	}
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Eligible", StatusText(Eligible))
	assert.Equal(t, "Applied", StatusText(Applied))
	assert.Equal(t, "Approved", StatusText(Approved))
	assert.Equal(t, "Not Applied", StatusText(NotApplied))
	assert.Equal(t, "withdrawn", StatusText("withdrawn"))
}

func TestCanApply(t *testing.T) {
	assert.True(t, Scheme{Status: Eligible}.CanApply())
	assert.True(t, Scheme{Status: NotApplied}.CanApply())
	assert.False(t, Scheme{Status: Applied}.CanApply())
	assert.False(t, Scheme{Status: Approved}.CanApply())
}

func TestApplicationGuide(t *testing.T) {
	list := Filter("soil", All)
	require.Len(t, list, 1)

	assert.Equal(t,
		"Application guide for Soil Health Card Scheme:\n\nDocuments required: Aadhaar Card, Land Records\n\nDeadline: Ongoing",
		list[0].ApplicationGuide())
}

func TestCatalogIsACopy(t *testing.T) {
	c := Catalog()
	c[0].Name = "changed"
	assert.Equal(t, "PM-KISAN Samman Nidhi", Catalog()[0].Name)

	for _, s := range c {
		assert.NotEmpty(t, s.PortalURL)
	}
}
