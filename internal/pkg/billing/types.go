package billing

// Plan is a recurring-payment plan as reported by the billing provider.
// Amount is in minor currency units.
type Plan struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Interval      string `json:"interval"`
	IntervalCount int    `json:"interval_count"`
	TrialDays     int    `json:"trial_period_days"`
	Name          string `json:"name"`
}

// Customer is a provider-side customer object. Only the opaque reference is
// kept locally.
type Customer struct {
	ID string `json:"id"`
}

// Subscription is a provider-side subscription. The plan lives provider-side
// and is never cached on the local user record.
type Subscription struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Customer string `json:"customer"`
	Plan     *Plan  `json:"plan"`
}

// SubscriptionUpdate is a partial update: empty fields are omitted from the
// provider call.
type SubscriptionUpdate struct {
	PlanID      string
	SourceToken string
}

// SaveParams carries one payment form submission into the reconciler.
type SaveParams struct {
	Cancel         bool
	PlanID         string
	SourceToken    string
	LastCardDigits string
}
