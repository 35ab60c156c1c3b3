package scorer

import (
	"fmt"
	"strings"

	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/ranges"
)

// ExcludeReason reports whether a company is an excluded company type
// (staffing, recruitment) and why. Exclusion gates lead output only;
// excluded companies still get enriched.
func ExcludeReason(company *model.Company, ex Exclusions) (string, bool) {
	if !ex.Enabled {
		return "", false
	}
	for _, code := range company.SBICodes {
		for _, prefix := range ex.SBIPrefixes {
			if strings.HasPrefix(code, prefix) {
				return fmt.Sprintf("Excluded company type: SBI %s (staffing/uitzend/detachering)", code), true
			}
		}
	}
	for _, keyword := range ex.NameKeywords {
		if strings.Contains(company.NormalizedName, keyword) {
			return fmt.Sprintf("Excluded company type: name contains '%s' (staffing/recruitment)", keyword), true
		}
	}
	return "", false
}

// FilterReason reports whether a company falls below an enabled minimum
// size filter. Unknown ranges always pass.
func FilterReason(company *model.Company, filters MinimumFilters) (string, bool) {
	if f := filters.Employee; f != nil && f.Enabled && company.EmployeeRange != nil {
		if ranges.Below(ranges.EmployeeLadder, *company.EmployeeRange, f.MinRange) {
			return fmt.Sprintf("Company too small: %s employees (minimum: %s)", *company.EmployeeRange, f.MinRange), true
		}
	}
	if f := filters.Revenue; f != nil && f.Enabled && company.RevenueRange != nil {
		if ranges.Below(ranges.RevenueLadder, *company.RevenueRange, f.MinRange) {
			return fmt.Sprintf("Revenue too low: %s (minimum: %s)", *company.RevenueRange, f.MinRange), true
		}
	}
	return "", false
}
