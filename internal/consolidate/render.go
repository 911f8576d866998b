package consolidate

// CellMeta tells a renderer whether to draw a field-group cell for a row and
// how many rows it spans.
type CellMeta struct {
	Visible bool `json:"visible"`
	Span    int  `json:"span"`
}

type RowMeta struct {
	ParticipantID string                  `json:"participant_id"`
	UnitKey       string                  `json:"unit_key"`
	Cells         map[FieldGroup]CellMeta `json:"cells"`
}

// Run is a maximal stretch of consecutive rows that belong to one unit.
type Run struct {
	Start  int
	Length int
	Unit   SharingUnit
}

// Runs splits ordered rows into runs. Both the table and the spreadsheet
// layout are derived from this stream.
func Runs(rows []Resolved) []Run {
	var runs []Run
	for i, row := range rows {
		if n := len(runs); n > 0 && runs[n-1].Unit.Key == row.Unit.Key {
			runs[n-1].Length++
			continue
		}
		runs = append(runs, Run{Start: i, Length: 1, Unit: row.Unit})
	}
	return runs
}

// BuildTableMeta computes cell visibility and row spans for ordered rows.
// For each field group the visible spans cover every row exactly once.
func BuildTableMeta(rows []Resolved) []RowMeta {
	meta := make([]RowMeta, len(rows))
	for i, row := range rows {
		meta[i] = RowMeta{
			ParticipantID: row.Participant.ID,
			UnitKey:       row.Unit.Key,
			Cells:         make(map[FieldGroup]CellMeta, len(SharedGroups)),
		}
	}

	for _, run := range Runs(rows) {
		for _, g := range SharedGroups {
			if !run.Unit.Shares(g) {
				for i := run.Start; i < run.Start+run.Length; i++ {
					meta[i].Cells[g] = CellMeta{Visible: true, Span: 1}
				}
				continue
			}
			meta[run.Start].Cells[g] = CellMeta{Visible: true, Span: run.Length}
			for i := run.Start + 1; i < run.Start+run.Length; i++ {
				meta[i].Cells[g] = CellMeta{Visible: false, Span: 0}
			}
		}
	}
	return meta
}

// ColumnBlock places the columns of one field group for one city, 1-based
// and inclusive.
type ColumnBlock struct {
	Group    FieldGroup
	City     string
	FirstCol int
	LastCol  int
}

// ColumnLayout describes where data rows and field-group columns sit on a
// sheet. Data row i (0-based) lands on sheet row HeaderRows+i+1.
type ColumnLayout struct {
	HeaderRows int
	Blocks     []ColumnBlock
}

// MergeRange is a rectangle of sheet cells to merge, 1-based and inclusive.
// Every column of the range is merged vertically on its own.
type MergeRange struct {
	Group    FieldGroup `json:"group"`
	City     string     `json:"city"`
	StartRow int        `json:"start_row"`
	EndRow   int        `json:"end_row"`
	FirstCol int        `json:"first_col"`
	LastCol  int        `json:"last_col"`
}

// BuildExportMergeRanges translates the shared runs of ordered rows into
// sheet coordinates. Single-row runs need no merge and produce none.
func BuildExportMergeRanges(rows []Resolved, layout ColumnLayout) []MergeRange {
	var out []MergeRange
	for _, run := range Runs(rows) {
		if run.Length < 2 {
			continue
		}
		start := layout.HeaderRows + run.Start + 1
		end := start + run.Length - 1
		for _, b := range layout.Blocks {
			if !run.Unit.Shares(b.Group) {
				continue
			}
			out = append(out, MergeRange{
				Group:    b.Group,
				City:     b.City,
				StartRow: start,
				EndRow:   end,
				FirstCol: b.FirstCol,
				LastCol:  b.LastCol,
			})
		}
	}
	return out
}
