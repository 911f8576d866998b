package consolidate

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomRoster(rng *rand.Rand, n int) []Participant {
	leads := []string{"", "", "L1", "L2", "L3"}
	groups := []string{"", "g1", "g2", "g3"}
	statuses := []LeadStatus{LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost}

	roster := make([]Participant, n)
	for i := range roster {
		var opts []option
		if l := leads[rng.Intn(len(leads))]; l != "" {
			opts = append(opts, withLead(l, statuses[len(l)%len(statuses)]))
			if rng.Intn(3) == 0 {
				opts = append(opts, leadPrimary())
			}
		}
		if g := groups[rng.Intn(len(groups))]; g != "" {
			opts = append(opts, inGroup(g, rng.Intn(3) == 0))
		}
		roster[i] = tourist(fmt.Sprintf("p%02d", i), opts...)
	}
	return roster
}

func TestTableMetaCoversEveryRowOnce(t *testing.T) {
	groups := []Group{
		{ID: "g1", Type: GroupMiniGroup},
		{ID: "g2", Type: GroupMiniGroup},
		{ID: "g3", Type: GroupFamily},
	}
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		res := ResolveRoster(randomRoster(rng, 1+rng.Intn(12)), groups)
		meta := BuildTableMeta(res.Rows)
		require.Len(t, meta, len(res.Rows))

		for _, g := range SharedGroups {
			coverage := make([]int, len(meta))
			for i, row := range meta {
				cell := row.Cells[g]
				if !cell.Visible {
					continue
				}
				require.GreaterOrEqual(t, cell.Span, 1)
				for j := i; j < i+cell.Span; j++ {
					require.Less(t, j, len(meta), "span runs past the roster")
					coverage[j]++
				}
			}
			for i, c := range coverage {
				require.Equal(t, 1, c, "iteration %d group %s row %d", iter, g, i)
			}
		}
	}
}

func TestTableMetaSpans(t *testing.T) {
	roster := append(family(3), miniGroup(2)...)
	roster = append(roster, tourist("solo"))
	res := ResolveRoster(roster, miniGroups)
	require.Equal(t, []string{"f1", "f2", "f3", "solo", "m1", "m2"}, participantIDs(res))

	meta := BuildTableMeta(res.Rows)

	for _, g := range SharedGroups {
		assert.Equal(t, CellMeta{Visible: true, Span: 3}, meta[0].Cells[g])
		assert.False(t, meta[1].Cells[g].Visible)
		assert.False(t, meta[2].Cells[g].Visible)
	}

	assert.Equal(t, CellMeta{Visible: true, Span: 1}, meta[3].Cells[DepartureGroup])

	// mini-group: hotel merged, arrival per row
	assert.Equal(t, CellMeta{Visible: true, Span: 2}, meta[4].Cells[HotelGroup])
	assert.Equal(t, CellMeta{Visible: false}, meta[5].Cells[HotelGroup])
	assert.Equal(t, CellMeta{Visible: true, Span: 1}, meta[5].Cells[ArrivalGroup])
}

func TestSplitUnitFormsSeparateRuns(t *testing.T) {
	// Lead order splits the group: m1 has no lead, m2 sits under lead Z.
	roster := []Participant{
		tourist("m1", inGroup("g1", true)),
		tourist("x", withLead("A", LeadNew)),
		tourist("m2", withLead("Z", LeadNew), inGroup("g1", false)),
	}
	res := ResolveRoster(roster, miniGroups)
	require.Equal(t, []string{"m1", "x", "m2"}, participantIDs(res))

	runs := Runs(res.Rows)
	require.Len(t, runs, 3)
	meta := BuildTableMeta(res.Rows)
	for _, row := range meta {
		assert.Equal(t, CellMeta{Visible: true, Span: 1}, row.Cells[HotelGroup])
	}
	assert.Empty(t, BuildExportMergeRanges(res.Rows, ColumnLayout{
		HeaderRows: 1,
		Blocks:     []ColumnBlock{{Group: HotelGroup, City: "Beijing", FirstCol: 5, LastCol: 6}},
	}))
}

func TestExportMergeRangesMatchTableMeta(t *testing.T) {
	roster := append(miniGroup(2), family(3)...)
	res := ResolveRoster(roster, miniGroups)
	layout := ColumnLayout{
		HeaderRows: 2,
		Blocks: []ColumnBlock{
			{Group: ArrivalGroup, City: "Beijing", FirstCol: 3, LastCol: 8},
			{Group: HotelGroup, City: "Beijing", FirstCol: 9, LastCol: 10},
			{Group: DepartureGroup, City: "Beijing", FirstCol: 11, LastCol: 16},
		},
	}

	ranges := BuildExportMergeRanges(res.Rows, layout)
	assert.Equal(t, []MergeRange{
		{Group: ArrivalGroup, City: "Beijing", StartRow: 3, EndRow: 5, FirstCol: 3, LastCol: 8},
		{Group: HotelGroup, City: "Beijing", StartRow: 3, EndRow: 5, FirstCol: 9, LastCol: 10},
		{Group: DepartureGroup, City: "Beijing", StartRow: 3, EndRow: 5, FirstCol: 11, LastCol: 16},
		{Group: HotelGroup, City: "Beijing", StartRow: 6, EndRow: 7, FirstCol: 9, LastCol: 10},
	}, ranges)

	meta := BuildTableMeta(res.Rows)
	for _, r := range ranges {
		anchor := r.StartRow - layout.HeaderRows - 1
		assert.Equal(t, CellMeta{Visible: true, Span: r.EndRow - r.StartRow + 1}, meta[anchor].Cells[r.Group])
	}
}

func participantIDs(res *Resolution) []string {
	out := make([]string, len(res.Rows))
	for i, row := range res.Rows {
		out[i] = row.Participant.ID
	}
	return out
}
