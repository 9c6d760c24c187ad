package indexer

import (
	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/internal/pkg/counts"
)

// Entry is the flattened, queryable view of one user record. Booleans are
// stored as "true"/"false" strings so every field fits one index row.
type Entry map[string]string

const (
	trueValue  = "true"
	falseValue = "false"
)

func boolValue(b bool) string {
	if b {
		return trueValue
	}
	return falseValue
}

// collectiveFlags computes the two per-collective booleans for a record:
// whether the user has joined the collective and whether they hold the
// member privilege in it.
func collectiveFlags(rec *models.UserRecord, collective string) (isUser, isMember bool) {
	if rec == nil {
		return false, false
	}
	m := rec.Membership(collective)
	if m == nil {
		return false, false
	}
	return true, m.HasPrivilege(models.PrivilegeMember)
}

// globalMember reports whether the record is a member of any configured
// collective.
func globalMember(rec *models.UserRecord, collectives []string) bool {
	for _, c := range collectives {
		if _, isMember := collectiveFlags(rec, c); isMember {
			return true
		}
	}
	return false
}

// Project derives the index entry and the sparse counter delta for a record
// mutation. prev is nil on the record's first appearance. The function is
// pure: it never mutates its inputs and projecting the same pair twice
// yields the same output.
//
// Delta policy: on first appearance every currently-true flag contributes +1
// (plus +1 for the global user counter); afterwards only flag flips
// contribute, +1 for false→true and -1 for true→false. Unchanged flags are
// omitted entirely, zero deltas are never emitted.
func Project(collectives []string, curr, prev *models.UserRecord) (Entry, counts.Delta) {
	entry := Entry{
		"user.id":         curr.ID,
		"user.name":       curr.Name,
		"user.email":      curr.Email,
		"user.visibility": curr.Visibility,
	}
	delta := counts.Delta{}

	for _, c := range collectives {
		isUser, isMember := collectiveFlags(curr, c)
		entry["user."+c] = boolValue(isUser)
		entry["member."+c] = boolValue(isMember)
		if m := curr.Membership(c); m != nil && m.Billing.HasCustomer() {
			entry["user."+c+".billing_customer_id"] = m.Billing.CustomerRef
		}

		if prev == nil {
			if isUser {
				delta["user."+c] = 1
			}
			if isMember {
				delta["member."+c] = 1
			}
			continue
		}

		prevUser, prevMember := collectiveFlags(prev, c)
		if isUser != prevUser {
			delta["user."+c] = flip(isUser)
		}
		if isMember != prevMember {
			delta["member."+c] = flip(isMember)
		}
	}

	isMember := globalMember(curr, collectives)
	entry["user.member"] = boolValue(isMember)

	if prev == nil {
		delta["user"] = 1
		if isMember {
			delta["member"] = 1
		}
	} else if wasMember := globalMember(prev, collectives); isMember != wasMember {
		delta["member"] = flip(isMember)
	}

	return entry, delta
}

func flip(nowTrue bool) int64 {
	if nowTrue {
		return 1
	}
	return -1
}
