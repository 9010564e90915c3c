// Package schemes is the catalog of government schemes offered to farmers.
package schemes

import (
	"fmt"
	"strings"

	"github.com/muurk/kisan/internal/urls"
)

// Category groups schemes by the kind of support they give.
type Category string

const (
	All       Category = "all"
	Subsidy   Category = "subsidy"
	Insurance Category = "insurance"
	Loan      Category = "loan"
)

// Categories returns the filter categories in display order.
func Categories() []Category {
	return []Category{All, Subsidy, Insurance, Loan}
}

// Label is the filter button text.
func (c Category) Label() string {
	switch c {
	case All:
		return "All Schemes"
	case Subsidy:
		return "Subsidies"
	case Insurance:
		return "Insurance"
	case Loan:
		return "Loans"
	default:
		return string(c)
	}
}

// Status is the farmer's standing for a scheme.
type Status string

const (
	Eligible   Status = "eligible"
	Applied    Status = "applied"
	Approved   Status = "approved"
	NotApplied Status = "not_applied"
)

// StatusText returns the badge text for s. Unknown statuses are shown raw.
func StatusText(s Status) string {
	switch s {
	case Eligible:
		return "Eligible"
	case Applied:
		return "Applied"
	case Approved:
		return "Approved"
	case NotApplied:
		return "Not Applied"
	default:
		return string(s)
	}
}

// Scheme is one entry of the catalog.
type Scheme struct {
	ID          int
	Name        string
	Category    Category
	Amount      string
	Eligibility string
	Status      Status
	Description string
	Documents   []string
	Deadline    string
	PortalURL   string
}

// CanApply reports whether the scheme offers "Apply Now" rather than
// application tracking.
func (s Scheme) CanApply() bool {
	return s.Status == Eligible || s.Status == NotApplied
}

// ApplicationGuide is the text shown when the farmer chooses to apply.
func (s Scheme) ApplicationGuide() string {
	return fmt.Sprintf("Application guide for %s:\n\nDocuments required: %s\n\nDeadline: %s",
		s.Name, strings.Join(s.Documents, ", "), s.Deadline)
}

var catalog = []Scheme{
	{
		ID:          1,
		Name:        "PM-KISAN Samman Nidhi",
		Category:    Subsidy,
		Amount:      "₹6,000/year",
		Eligibility: "Small & marginal farmers",
		Status:      Eligible,
		Description: "Direct income support to farmer families",
		Documents:   []string{"Aadhaar Card", "Bank Account", "Land Records"},
		Deadline:    "March 31, 2024",
		PortalURL:   urls.PMKisan,
	},
	{
		ID:          2,
		Name:        "Pradhan Mantri Fasal Bima Yojana",
		Category:    Insurance,
		Amount:      "Up to ₹2 lakh coverage",
		Eligibility: "All farmers",
		Status:      Applied,
		Description: "Crop insurance against natural calamities",
		Documents:   []string{"Aadhaar Card", "Bank Account", "Land Records", "Sowing Certificate"},
		Deadline:    "Within 7 days of sowing",
		PortalURL:   urls.PMFBY,
	},
	{
		ID:          3,
		Name:        "Kisan Credit Card",
		Category:    Loan,
		Amount:      "Up to ₹3 lakh",
		Eligibility: "Farmers with land records",
		Status:      NotApplied,
		Description: "Credit facility for agricultural needs",
		Documents:   []string{"Aadhaar Card", "PAN Card", "Land Records", "Income Certificate"},
		Deadline:    "No deadline",
		PortalURL:   urls.KisanCreditCard,
	},
	{
		ID:          4,
		Name:        "Soil Health Card Scheme",
		Category:    Subsidy,
		Amount:      "Free soil testing",
		Eligibility: "All farmers",
		Status:      Eligible,
		Description: "Free soil testing and nutrient recommendations",
		Documents:   []string{"Aadhaar Card", "Land Records"},
		Deadline:    "Ongoing",
		PortalURL:   urls.SoilHealthCard,
	},
}

// Catalog returns a copy of every scheme.
func Catalog() []Scheme {
	out := make([]Scheme, len(catalog))
	copy(out, catalog)
	return out
}

// Filter returns the schemes whose name contains query (case-insensitive)
// and whose category matches. The empty category behaves like All.
func Filter(query string, category Category) []Scheme {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Scheme
	for _, s := range catalog {
		if q != "" && !strings.Contains(strings.ToLower(s.Name), q) {
			continue
		}
		if category != All && category != "" && s.Category != category {
			continue
		}
		out = append(out, s)
	}
	return out
}
