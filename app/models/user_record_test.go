package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserRecord(t *testing.T) {
	rec := NewUserRecord("mara", "mara@example.com")

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, RecordTypeUser, rec.Type)
	assert.Equal(t, VisibilityPrivate, rec.Visibility, "profiles start private")
	assert.NoError(t, rec.Validate())
}

func TestUserRecordValidate(t *testing.T) {
	rec := NewUserRecord("m", "not-an-email")
	assert.Error(t, rec.Validate())
}

func TestJoinLeave(t *testing.T) {
	rec := NewUserRecord("mara", "mara@example.com")

	m := rec.Join("gardening")
	require.NotNil(t, m)
	assert.Same(t, m, rec.Join("gardening"), "joining twice is a no-op")
	assert.Same(t, m, rec.Membership("gardening"))

	rec.Leave("gardening")
	assert.Nil(t, rec.Membership("gardening"))
}

func TestPrivileges(t *testing.T) {
	m := &CollectiveMembership{Privileges: []string{}}

	assert.False(t, m.HasPrivilege(PrivilegeMember))

	m.GrantPrivilege(PrivilegeMember)
	m.GrantPrivilege(PrivilegeMember)
	assert.Equal(t, []string{PrivilegeMember}, m.Privileges, "granting twice keeps one entry")

	m.RevokePrivilege(PrivilegeMember)
	assert.False(t, m.HasPrivilege(PrivilegeMember))

	var nilMembership *CollectiveMembership
	assert.False(t, nilMembership.HasPrivilege(PrivilegeMember))
}

func TestBillingClear(t *testing.T) {
	m := &CollectiveMembership{}
	info := m.EnsureBilling()
	info.CustomerRef = "cus_1"
	info.SubscriptionRef = "sub_1"
	info.LastCardDigits = "42"

	assert.True(t, info.HasCustomer())
	assert.True(t, info.HasSubscription())

	info.Clear()
	assert.False(t, info.HasCustomer())
	assert.False(t, info.HasSubscription())
	assert.NotNil(t, m.Billing, "the billing object survives cancellation")
}

func TestUserRecordRoundTrip(t *testing.T) {
	rec := NewUserRecord("mara", "mara@example.com")
	rec.Join("gardening").GrantPrivilege(PrivilegeMember)
	rec.Membership("gardening").EnsureBilling().CustomerRef = "cus_1"

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var back UserRecord
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, rec.ID, back.ID)
	assert.True(t, back.Membership("gardening").HasPrivilege(PrivilegeMember))
	assert.Equal(t, "cus_1", back.Membership("gardening").Billing.CustomerRef)
}
