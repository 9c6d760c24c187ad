package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/internal/pkg/counts"
)

var testCollectives = []string{"gardening", "woodwork"}

func newTestRecord() *models.UserRecord {
	rec := models.NewUserRecord("mara", "mara@example.com")
	rec.Visibility = models.VisibilityPublic
	return rec
}

func TestProjectFirstAppearance(t *testing.T) {
	rec := newTestRecord()
	rec.Join("gardening")

	entry, delta := Project(testCollectives, rec, nil)

	assert.Equal(t, rec.ID, entry["user.id"])
	assert.Equal(t, "mara", entry["user.name"])
	assert.Equal(t, "mara@example.com", entry["user.email"])
	assert.Equal(t, "public", entry["user.visibility"])
	assert.Equal(t, "true", entry["user.gardening"])
	assert.Equal(t, "false", entry["member.gardening"])
	assert.Equal(t, "false", entry["user.woodwork"])
	assert.Equal(t, "false", entry["user.member"])

	assert.Equal(t, counts.Delta{
		"user":           1,
		"user.gardening": 1,
	}, delta)
}

func TestProjectFirstAppearanceMember(t *testing.T) {
	rec := newTestRecord()
	rec.Join("gardening").GrantPrivilege(models.PrivilegeMember)

	entry, delta := Project(testCollectives, rec, nil)

	assert.Equal(t, "true", entry["member.gardening"])
	assert.Equal(t, "true", entry["user.member"])
	assert.Equal(t, counts.Delta{
		"user":             1,
		"member":           1,
		"user.gardening":   1,
		"member.gardening": 1,
	}, delta)
}

func TestProjectNoChangeEmitsNoDelta(t *testing.T) {
	rec := newTestRecord()
	rec.Join("gardening")

	prev := newTestRecord()
	prev.ID = rec.ID
	prev.Join("gardening")

	_, delta := Project(testCollectives, rec, prev)

	assert.Empty(t, delta, "unchanged flags must not produce deltas")
}

func TestProjectMemberFlip(t *testing.T) {
	prev := newTestRecord()
	prev.Join("gardening")

	curr := newTestRecord()
	curr.ID = prev.ID
	curr.Join("gardening").GrantPrivilege(models.PrivilegeMember)

	_, delta := Project(testCollectives, curr, prev)
	assert.Equal(t, counts.Delta{
		"member":           1,
		"member.gardening": 1,
	}, delta)

	// Revoking is the exact mirror.
	_, back := Project(testCollectives, prev, curr)
	assert.Equal(t, counts.Delta{
		"member":           -1,
		"member.gardening": -1,
	}, back)
}

func TestProjectLeaveCollective(t *testing.T) {
	prev := newTestRecord()
	prev.Join("gardening").GrantPrivilege(models.PrivilegeMember)

	curr := newTestRecord()
	curr.ID = prev.ID

	entry, delta := Project(testCollectives, curr, prev)

	assert.Equal(t, "false", entry["user.gardening"])
	assert.Equal(t, counts.Delta{
		"member":           -1,
		"user.gardening":   -1,
		"member.gardening": -1,
	}, delta)
}

func TestProjectGlobalMemberStableAcrossCollectives(t *testing.T) {
	// Member in two collectives, losing one: the global member flag must not
	// flip because the other membership still holds.
	prev := newTestRecord()
	prev.Join("gardening").GrantPrivilege(models.PrivilegeMember)
	prev.Join("woodwork").GrantPrivilege(models.PrivilegeMember)

	curr := newTestRecord()
	curr.ID = prev.ID
	curr.Join("gardening").GrantPrivilege(models.PrivilegeMember)

	entry, delta := Project(testCollectives, curr, prev)

	assert.Equal(t, "true", entry["user.member"])
	assert.Equal(t, counts.Delta{
		"user.woodwork":   -1,
		"member.woodwork": -1,
	}, delta)
}

func TestProjectBillingCustomerField(t *testing.T) {
	rec := newTestRecord()
	m := rec.Join("gardening")
	m.EnsureBilling().CustomerRef = "cus_123"

	entry, _ := Project(testCollectives, rec, nil)
	assert.Equal(t, "cus_123", entry["user.gardening.billing_customer_id"])

	// Cleared billing must drop the field entirely.
	m.Billing.Clear()
	entry, _ = Project(testCollectives, rec, nil)
	_, ok := entry["user.gardening.billing_customer_id"]
	assert.False(t, ok)
}

func TestProjectIsPure(t *testing.T) {
	rec := newTestRecord()
	rec.Join("gardening")

	_, first := Project(testCollectives, rec, nil)
	_, second := Project(testCollectives, rec, nil)

	require.Equal(t, first, second, "projecting the same pair twice must yield the same delta")
	assert.Len(t, rec.Collectives, 1)
}
