package billing

import (
	"sort"
	"strings"
)

// FilterPlans keeps only the plans offered on the payment page: matching the
// reference currency, billed monthly, single interval, no trial period. The
// result is sorted ascending by amount (numeric, not lexicographic).
func FilterPlans(plans []Plan, currency string) []Plan {
	currency = strings.ToLower(strings.TrimSpace(currency))

	out := make([]Plan, 0, len(plans))
	for _, p := range plans {
		if strings.ToLower(p.Currency) != currency {
			continue
		}
		if p.Interval != "month" || p.IntervalCount != 1 {
			continue
		}
		if p.TrialDays > 0 {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount < out[j].Amount
	})
	return out
}

// FindPlan returns the plan with the given id, or nil.
func FindPlan(plans []Plan, id string) *Plan {
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i]
		}
	}
	return nil
}
