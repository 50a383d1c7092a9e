package hallway

// BudgetsExceeded reports whether any resource with a configured ceiling has
// been overrun. The comparison is strictly greater-than: a run landing
// exactly on budget may proceed, and the increment that crosses the ceiling
// triggers a halt on the following check. Absent usage keys count as zero.
func BudgetsExceeded(budgets, usage map[string]float64) bool {
	for resource, limit := range budgets {
		if usage[resource] > limit {
			return true
		}
	}
	return false
}
