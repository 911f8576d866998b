package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var miniGroups = []Group{
	{ID: "g1", Name: "Friends", Type: GroupMiniGroup},
	{ID: "g2", Name: "Legacy family", Type: GroupFamily},
}

func TestResolveFamily(t *testing.T) {
	roster := []Participant{
		tourist("maria", withLead("L", LeadConverted)),
		tourist("ivan", withLead("L", LeadConverted), leadPrimary()),
	}
	res := ResolveRoster(roster, nil)

	unit, ok := res.Unit("maria")
	require.True(t, ok)
	assert.Equal(t, UnitFamily, unit.Kind)
	assert.Equal(t, []string{"ivan", "maria"}, unit.Members)
	assert.Equal(t, "ivan", unit.Anchor())
	assert.Equal(t, Sharing{Arrival: true, Hotel: true, Departure: true}, unit.Sharing)
	assert.Empty(t, res.Anomalies)
}

func TestResolveMiniGroup(t *testing.T) {
	roster := []Participant{
		tourist("a", inGroup("g1", true)),
		tourist("b", inGroup("g1", false)),
	}
	unit := Resolve(roster[1], roster, miniGroups)
	assert.Equal(t, UnitMiniGroup, unit.Kind)
	assert.Equal(t, []string{"a", "b"}, unit.Members)
	assert.Equal(t, Sharing{Hotel: true}, unit.Sharing)
}

func TestResolveFamilyWinsOverMiniGroup(t *testing.T) {
	roster := []Participant{
		tourist("a", withLead("L", LeadNew), leadPrimary(), inGroup("g1", true)),
		tourist("b", withLead("L", LeadNew), inGroup("g1", false)),
		tourist("c", inGroup("g1", false)),
	}
	res := ResolveRoster(roster, miniGroups)

	for _, id := range []string{"a", "b"} {
		unit, _ := res.Unit(id)
		assert.Equal(t, UnitFamily, unit.Kind, id)
	}
	unit, _ := res.Unit("c")
	assert.Equal(t, UnitMiniGroup, unit.Kind)
	assert.Equal(t, []string{"c", "a", "b"}, unit.Members)
}

func TestResolveDegradesToNone(t *testing.T) {
	cases := map[string][]Participant{
		"single member lead":  {tourist("a", withLead("L", LeadNew)), tourist("b")},
		"single member group": {tourist("a", inGroup("g1", true)), tourist("b")},
		"explicit family type": {
			tourist("a", inGroup("g2", true)),
			tourist("b", inGroup("g2", false)),
		},
		"dangling group": {
			tourist("a", inGroup("missing", true)),
			tourist("b", inGroup("missing", false)),
		},
		"dangling lead": {
			tourist("a", withDanglingLead("ghost")),
			tourist("b", withDanglingLead("ghost")),
		},
	}
	for name, roster := range cases {
		t.Run(name, func(t *testing.T) {
			res := ResolveRoster(roster, miniGroups)
			unit, ok := res.Unit("a")
			require.True(t, ok)
			assert.Equal(t, UnitNone, unit.Kind)
			assert.Equal(t, []string{"a"}, unit.Members)
			assert.Equal(t, Sharing{}, unit.Sharing)
		})
	}
}

func TestResolveReportsAnomalies(t *testing.T) {
	roster := []Participant{
		tourist("a", withDanglingLead("ghost")),
		tourist("b", inGroup("missing", false)),
		tourist("c", withLead("L", LeadNew), leadPrimary()),
		tourist("d", withLead("L", LeadNew), leadPrimary()),
		tourist("e", inGroup("g1", false)),
		tourist("f", inGroup("g1", false)),
	}
	res := ResolveRoster(roster, miniGroups)

	kinds := map[AnomalyKind]int{}
	for _, a := range res.Anomalies {
		kinds[a.Kind]++
	}
	assert.Equal(t, map[AnomalyKind]int{
		AnomalyUnknownLead:     1,
		AnomalyUnknownGroup:    1,
		AnomalyPrimaryConflict: 1,
		AnomalyPrimaryMissing:  1,
	}, kinds)

	unit, _ := res.Unit("d")
	assert.Equal(t, "c", unit.Anchor(), "conflicting primaries fall back to roster order")
}

func TestResolutionCanonicalUsesAnchor(t *testing.T) {
	roster := []Participant{
		tourist("ivan", withLead("L", LeadNew), leadPrimary(),
			withVisit(CityVisit{City: "Beijing", HotelName: "Grand", ArrivalDate: "2025-07-01"})),
		tourist("maria", withLead("L", LeadNew),
			withVisit(CityVisit{City: "Beijing", HotelName: "Stale", Notes: "vegetarian"})),
	}
	res := ResolveRoster(roster, nil)

	v := res.Canonical("maria", "Beijing")
	assert.Equal(t, "Grand", v.HotelName)
	assert.Equal(t, "2025-07-01", v.ArrivalDate)
	assert.Equal(t, "vegetarian", v.Notes)

	own := res.Canonical("ivan", "Beijing")
	assert.Equal(t, "Grand", own.HotelName)
	assert.Equal(t, CityVisit{City: "Shanghai"}, res.Canonical("nobody", "Shanghai"))
}

func TestMiniGroupCanonicalSharesOnlyHotel(t *testing.T) {
	roster := []Participant{
		tourist("a", inGroup("g1", true), withVisit(CityVisit{City: "X", HotelName: "H", ArrivalDate: "d1"})),
		tourist("b", inGroup("g1", false), withVisit(CityVisit{City: "X", ArrivalDate: "d2"})),
	}
	res := ResolveRoster(roster, miniGroups)
	v := res.Canonical("b", "X")
	assert.Equal(t, "H", v.HotelName)
	assert.Equal(t, "d2", v.ArrivalDate)
}
