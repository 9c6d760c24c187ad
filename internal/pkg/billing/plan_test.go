package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterPlans(t *testing.T) {
	plans := []Plan{
		{ID: "yearly", Amount: 5000, Currency: "usd", Interval: "year", IntervalCount: 1},
		{ID: "big", Amount: 500, Currency: "usd", Interval: "month", IntervalCount: 1},
		{ID: "eur", Amount: 300, Currency: "eur", Interval: "month", IntervalCount: 1},
		{ID: "trial", Amount: 400, Currency: "usd", Interval: "month", IntervalCount: 1, TrialDays: 14},
		{ID: "quarterly", Amount: 600, Currency: "usd", Interval: "month", IntervalCount: 3},
		{ID: "small", Amount: 200, Currency: "usd", Interval: "month", IntervalCount: 1},
	}

	got := FilterPlans(plans, "usd")

	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"small", "big"}, ids, "only plain monthly plans in the collective currency, cheapest first")
}

func TestFilterPlansEmpty(t *testing.T) {
	assert.Empty(t, FilterPlans(nil, "usd"))
	assert.Empty(t, FilterPlans([]Plan{{ID: "x", Currency: "eur", Interval: "month", IntervalCount: 1}}, "usd"))
}

func TestFindPlan(t *testing.T) {
	plans := []Plan{{ID: "a", Amount: 100}, {ID: "b", Amount: 200}}

	p := FindPlan(plans, "b")
	assert.NotNil(t, p)
	assert.Equal(t, int64(200), p.Amount)

	assert.Nil(t, FindPlan(plans, "missing"))
}
