// Package ranges defines the canonical employee and revenue bucket ladders
// shared by enrichment, scoring, and the minimum-size filters. Every bucket
// covers [lower, upper) so a count maps to exactly one bucket.
package ranges

// EmployeeLadder is the ordered employee-range ladder, smallest first.
var EmployeeLadder = []string{"1-9", "10-49", "50-99", "100-199", "200-499", "500-999", "1000+"}

// RevenueLadder is the ordered annual-revenue ladder in EUR, smallest first.
var RevenueLadder = []string{"<1M", "1M-10M", "10M-50M", "50M-100M", "100M-500M", "500M+"}

var employeeUppers = []int{10, 50, 100, 200, 500, 1000}

var revenueUppers = []int64{
	1_000_000,
	10_000_000,
	50_000_000,
	100_000_000,
	500_000_000,
}

// EmployeeRangeFromCount maps a headcount to its ladder bucket.
// Returns "" for non-positive counts.
func EmployeeRangeFromCount(count int) string {
	if count <= 0 {
		return ""
	}
	for i, upper := range employeeUppers {
		if count < upper {
			return EmployeeLadder[i]
		}
	}
	return EmployeeLadder[len(EmployeeLadder)-1]
}

// RevenueRangeFromAmount maps an annual revenue figure to its ladder bucket.
// Returns "" for non-positive amounts.
func RevenueRangeFromAmount(amount int64) string {
	if amount <= 0 {
		return ""
	}
	for i, upper := range revenueUppers {
		if amount < upper {
			return RevenueLadder[i]
		}
	}
	return RevenueLadder[len(RevenueLadder)-1]
}

// Position returns the index of bucket within ladder, or -1 if absent.
func Position(ladder []string, bucket string) int {
	for i, b := range ladder {
		if b == bucket {
			return i
		}
	}
	return -1
}

// Below reports whether bucket sits strictly below minimum on the ladder.
// Unknown buckets on either side never compare as below.
func Below(ladder []string, bucket, minimum string) bool {
	bi := Position(ladder, bucket)
	mi := Position(ladder, minimum)
	if bi < 0 || mi < 0 {
		return false
	}
	return bi < mi
}
