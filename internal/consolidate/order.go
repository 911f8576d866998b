package consolidate

import (
	"cmp"
	"slices"
)

// Order returns a copy of participants in roster display order: converted
// leads first, then members of one lead together with the lead's primary
// tourist on top, then members of one group together with the group's
// primary on top. Ties keep their input order.
func Order(participants []Participant) []Participant {
	out := slices.Clone(participants)
	slices.SortStableFunc(out, compareParticipants)
	return out
}

func compareParticipants(a, b Participant) int {
	if c := compareFirst(isConverted(a), isConverted(b)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.LeadID, b.LeadID); c != 0 {
		return c
	}
	if c := compareFirst(isLeadPrimary(a), isLeadPrimary(b)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.GroupID, b.GroupID); c != 0 {
		return c
	}
	return compareFirst(a.GroupID != "" && a.IsGroupPrimary, b.GroupID != "" && b.IsGroupPrimary)
}

// compareFirst sorts true before false.
func compareFirst(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func isConverted(p Participant) bool {
	return p.Lead != nil && p.Lead.Status == LeadConverted
}

func isLeadPrimary(p Participant) bool {
	return p.Profile != nil && p.Profile.IsPrimary
}
