package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	RecordTypeUser = "user"

	VisibilityPublic  = "public"
	VisibilityPrivate = "private"

	// PrivilegeMember marks a paying member of a collective. Everyone who
	// joined a collective has an entry in Collectives; only holders of this
	// privilege count as members.
	PrivilegeMember = "member"
)

// UserRecord is the canonical user document stored in the record log. Every
// mutation is a full replacement appended as a new immutable revision; the
// projector receives the current and previous value to compute deltas.
type UserRecord struct {
	ID          string                           `json:"id" validate:"required"`
	Type        string                           `json:"type" validate:"required"`
	Name        string                           `json:"name" validate:"required,min=2,max=150"`
	Email       string                           `json:"email" validate:"required,email,min=5,max=200"`
	Visibility  string                           `json:"visibility" validate:"oneof=public private"`
	Bio         string                           `json:"bio,omitempty" validate:"max=1000"`
	AvatarKey   string                           `json:"avatar_key,omitempty"`
	Collectives map[string]*CollectiveMembership `json:"collectives,omitempty"`
	CreatedAt   time.Time                        `json:"created_at"`
	UpdatedAt   time.Time                        `json:"updated_at"`
}

// CollectiveMembership is a user's relationship to a single collective.
type CollectiveMembership struct {
	Privileges []string     `json:"privileges"`
	Billing    *BillingInfo `json:"billing,omitempty"`
}

// BillingInfo is the per-collective payment relationship. It is created
// lazily on the first payment attempt and nulled (never removed as a key)
// on cancellation.
type BillingInfo struct {
	CustomerRef     string `json:"customer_ref,omitempty"`
	SubscriptionRef string `json:"subscription_ref,omitempty"`
	LastCardDigits  string `json:"last_card_digits,omitempty"`
}

func NewUserRecord(name, email string) *UserRecord {
	now := time.Now().UTC()
	return &UserRecord{
		ID:          uuid.NewString(),
		Type:        RecordTypeUser,
		Name:        name,
		Email:       email,
		Visibility:  VisibilityPrivate,
		Collectives: map[string]*CollectiveMembership{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (r *UserRecord) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

// Membership returns the user's membership object for a collective, or nil
// if the user never joined it.
func (r *UserRecord) Membership(collective string) *CollectiveMembership {
	if r.Collectives == nil {
		return nil
	}
	return r.Collectives[collective]
}

// Join adds the user to a collective without any privileges. Joining twice
// is a no-op.
func (r *UserRecord) Join(collective string) *CollectiveMembership {
	if r.Collectives == nil {
		r.Collectives = map[string]*CollectiveMembership{}
	}
	m, ok := r.Collectives[collective]
	if !ok {
		m = &CollectiveMembership{Privileges: []string{}}
		r.Collectives[collective] = m
	}
	return m
}

// Leave removes the user's entry for a collective entirely.
func (r *UserRecord) Leave(collective string) {
	delete(r.Collectives, collective)
}

// Touch refreshes the modification timestamp before a log append.
func (r *UserRecord) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// IsPublic reports whether the profile may be shown to anonymous visitors.
func (r *UserRecord) IsPublic() bool {
	return r.Visibility == VisibilityPublic
}

func (m *CollectiveMembership) HasPrivilege(priv string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.Privileges {
		if p == priv {
			return true
		}
	}
	return false
}

// GrantPrivilege adds a privilege if it is not already held.
func (m *CollectiveMembership) GrantPrivilege(priv string) {
	if m.HasPrivilege(priv) {
		return
	}
	m.Privileges = append(m.Privileges, priv)
}

// RevokePrivilege removes a privilege if held.
func (m *CollectiveMembership) RevokePrivilege(priv string) {
	out := m.Privileges[:0]
	for _, p := range m.Privileges {
		if p != priv {
			out = append(out, p)
		}
	}
	m.Privileges = out
}

// EnsureBilling returns the membership's billing info, creating an empty one
// on first use.
func (m *CollectiveMembership) EnsureBilling() *BillingInfo {
	if m.Billing == nil {
		m.Billing = &BillingInfo{}
	}
	return m.Billing
}

func (b *BillingInfo) HasCustomer() bool {
	return b != nil && b.CustomerRef != ""
}

func (b *BillingInfo) HasSubscription() bool {
	return b != nil && b.SubscriptionRef != ""
}

// Clear nulls every billing field. The billing object itself stays on the
// membership so the structural key survives cancellation.
func (b *BillingInfo) Clear() {
	b.CustomerRef = ""
	b.SubscriptionRef = ""
	b.LastCardDigits = ""
}
