package billing

import (
	"context"
	"errors"
	"log"

	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/internal/pkg/config"
)

// RecordStore is the slice of the record log the reconciler needs: it reads
// a user's current value and appends the reconciled one.
type RecordStore interface {
	Get(ctx context.Context, id string) (*models.UserRecord, error)
	Put(ctx context.Context, rec *models.UserRecord) error
}

// ClientFactory builds a provider client from one collective's credentials.
type ClientFactory func(col config.Collective) Client

// DefaultClientFactory creates the HTTP provider client.
func DefaultClientFactory(col config.Collective) Client {
	return NewProviderClient(col.BillingSecretKey)
}

// Service reconciles a user's locally stored billing state with the external
// provider's live subscription state and persists the result through the
// record log.
type Service struct {
	collectives config.Collectives
	records     RecordStore
	newClient   ClientFactory
}

func NewService(collectives config.Collectives, records RecordStore, factory ClientFactory) *Service {
	if factory == nil {
		factory = DefaultClientFactory
	}
	return &Service{
		collectives: collectives,
		records:     records,
		newClient:   factory,
	}
}

// ViewState is everything the payment page needs to render.
type ViewState struct {
	Collective     string
	DisplayName    string
	PublishableKey string
	Billing        models.BillingInfo
	CurrentPlan    *Plan
	Plans          []Plan
}

// View assembles the renderable payment state for one user and collective.
// If the provider reports the stored subscription gone (deleted externally),
// the state degrades to customer-only for display without mutating the
// stored record.
func (s *Service) View(ctx context.Context, user *models.UserRecord, collective string) (*ViewState, error) {
	col, ok := s.collectives[collective]
	if !ok {
		return nil, ErrUnknownCollective
	}

	state := &ViewState{
		Collective:     collective,
		DisplayName:    col.DisplayName,
		PublishableKey: col.BillingPublishableKey,
	}
	if m := user.Membership(collective); m != nil && m.Billing != nil {
		state.Billing = *m.Billing
	}

	client := s.newClient(col)

	plans, err := client.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	state.Plans = FilterPlans(plans, col.Currency)

	if state.Billing.HasCustomer() && state.Billing.HasSubscription() {
		sub, err := client.GetSubscription(ctx, state.Billing.CustomerRef, state.Billing.SubscriptionRef)
		switch {
		case IsProviderNotFound(err):
			// Deleted on the provider side; show as customer-only.
		case err != nil:
			return nil, err
		case sub.Plan != nil && sub.Plan.ID != "":
			state.CurrentPlan = sub.Plan
		}
	}

	return state, nil
}

// Save applies one payment form submission: cancel, first-time subscribe, or
// subscription update. Every path ends by persisting the full user record
// (with a refreshed modification timestamp) through the record log.
func (s *Service) Save(ctx context.Context, user *models.UserRecord, collective string, p SaveParams) (*models.UserRecord, error) {
	col, ok := s.collectives[collective]
	if !ok {
		return nil, ErrUnknownCollective
	}

	membership := user.Membership(collective)
	if membership == nil {
		// Advisory only: the historical behavior lets the payment proceed
		// for users who never joined. Flagged, not enforced.
		log.Printf("billing: %v (user=%s collective=%s)", ErrNotAMember, user.ID, collective)
		membership = user.Join(collective)
	}
	info := membership.EnsureBilling()

	client := s.newClient(col)

	if p.Cancel {
		return s.cancel(ctx, client, user, info)
	}

	if !info.HasCustomer() {
		customer, err := client.CreateCustomer(ctx, user.Name+" | "+user.Email)
		if err != nil {
			return nil, err
		}
		info.CustomerRef = customer.ID

		sub, err := client.CreateSubscription(ctx, info.CustomerRef, p.PlanID, p.SourceToken)
		if err != nil {
			return nil, err
		}
		info.SubscriptionRef = sub.ID
		info.LastCardDigits = p.LastCardDigits

		return s.persist(ctx, user)
	}

	// Existing customer: partial update with only the fields that changed.
	var sub *Subscription
	var err error
	if info.HasSubscription() {
		sub, err = client.UpdateSubscription(ctx, info.CustomerRef, info.SubscriptionRef, SubscriptionUpdate{
			PlanID:      p.PlanID,
			SourceToken: p.SourceToken,
		})
	} else {
		sub, err = client.CreateSubscription(ctx, info.CustomerRef, p.PlanID, p.SourceToken)
	}
	if err != nil {
		return nil, err
	}
	info.SubscriptionRef = sub.ID
	if p.SourceToken != "" {
		info.LastCardDigits = p.LastCardDigits
	}

	return s.persist(ctx, user)
}

// cancel clears the local billing relation. The provider call is
// acknowledged fire-and-forget: its error is surfaced to the caller, but the
// local fields clear regardless so the account cannot wedge in a
// half-cancelled state.
func (s *Service) cancel(ctx context.Context, client Client, user *models.UserRecord, info *models.BillingInfo) (*models.UserRecord, error) {
	if !info.HasSubscription() {
		return nil, ErrNoActiveSubscription
	}

	cancelErr := client.CancelSubscription(ctx, info.CustomerRef, info.SubscriptionRef)
	info.Clear()

	saved, err := s.persist(ctx, user)
	if err != nil {
		return nil, err
	}
	return saved, cancelErr
}

func (s *Service) persist(ctx context.Context, user *models.UserRecord) (*models.UserRecord, error) {
	user.Touch()
	if err := s.records.Put(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SanitizedMessage maps an error from a save/view call to text safe to show
// an end user. Provider detail goes to logs, never to the page.
func SanitizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCollective):
		return "No collective by that name exists."
	case errors.Is(err, ErrNoActiveSubscription):
		return "There is no active subscription to cancel."
	default:
		var pe *ProviderError
		if errors.As(err, &pe) {
			return "The payment provider could not process the request. Please try again later."
		}
		return "Something went wrong while saving your payment settings."
	}
}
