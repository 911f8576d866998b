package export

import (
	"fmt"
	"io"

	"backend-tourdesk/internal/consolidate"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName  = "Roster"
	headerRows = 2
)

// leading columns before the first city block
var identityHeaders = []string{"#", "Tourist", "Class", "Deal"}

var fieldLabels = map[consolidate.Field]string{
	consolidate.ArrivalDate:        "Arrival date",
	consolidate.ArrivalTime:        "Arrival time",
	consolidate.ArrivalTransport:   "Arrival by",
	consolidate.ArrivalFlight:      "Arrival flight/train",
	consolidate.ArrivalTerminal:    "Arrival terminal",
	consolidate.ArrivalTransfer:    "Arrival transfer",
	consolidate.HotelName:          "Hotel",
	consolidate.RoomType:           "Room",
	consolidate.DepartureDate:      "Departure date",
	consolidate.DepartureTime:      "Departure time",
	consolidate.DepartureTransport: "Departure by",
	consolidate.DepartureFlight:    "Departure flight/train",
	consolidate.DepartureTerminal:  "Departure terminal",
	consolidate.DepartureTransfer:  "Departure transfer",
	consolidate.Notes:              "Notes",
}

// cityWidth is the number of columns per city: the three shareable blocks
// plus a notes column.
func cityWidth() int {
	n := 1
	for _, g := range consolidate.SharedGroups {
		n += len(consolidate.GroupFields[g])
	}
	return n
}

// Layout places every city of the route side by side after the identity
// columns.
func Layout(route consolidate.Route) consolidate.ColumnLayout {
	layout := consolidate.ColumnLayout{HeaderRows: headerRows}
	col := len(identityHeaders) + 1
	for _, city := range route {
		for _, g := range consolidate.SharedGroups {
			width := len(consolidate.GroupFields[g])
			layout.Blocks = append(layout.Blocks, consolidate.ColumnBlock{
				Group:    g,
				City:     city,
				FirstCol: col,
				LastCol:  col + width - 1,
			})
			col += width
		}
		col++ // notes
	}
	return layout
}

// Build renders the resolved roster into a workbook. Shared cells carry the
// unit's canonical value on the first row of each run and are merged down
// over the rest of it.
func Build(res *consolidate.Resolution, route consolidate.Route) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeHeader(f, route); err != nil {
		f.Close()
		return nil, err
	}

	meta := consolidate.BuildTableMeta(res.Rows)
	layout := Layout(route)
	for i, row := range res.Rows {
		if err := writeRow(f, res, i, row, meta[i], route); err != nil {
			f.Close()
			return nil, err
		}
	}

	for _, m := range consolidate.BuildExportMergeRanges(res.Rows, layout) {
		for col := m.FirstCol; col <= m.LastCol; col++ {
			top, _ := excelize.CoordinatesToCellName(col, m.StartRow)
			bottom, _ := excelize.CoordinatesToCellName(col, m.EndRow)
			if err := f.MergeCell(SheetName, top, bottom); err != nil {
				f.Close()
				return nil, fmt.Errorf("merge %s:%s: %w", top, bottom, err)
			}
		}
	}
	return f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, res *consolidate.Resolution, route consolidate.Route) error {
	f, err := Build(res, route)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeHeader(f *excelize.File, route consolidate.Route) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return err
	}

	for i, title := range identityHeaders {
		top, _ := excelize.CoordinatesToCellName(i+1, 1)
		bottom, _ := excelize.CoordinatesToCellName(i+1, headerRows)
		if err := f.SetCellValue(SheetName, top, title); err != nil {
			return err
		}
		if err := f.MergeCell(SheetName, top, bottom); err != nil {
			return err
		}
	}

	col := len(identityHeaders) + 1
	width := cityWidth()
	for _, city := range route {
		first, _ := excelize.CoordinatesToCellName(col, 1)
		last, _ := excelize.CoordinatesToCellName(col+width-1, 1)
		if err := f.SetCellValue(SheetName, first, city); err != nil {
			return err
		}
		if err := f.MergeCell(SheetName, first, last); err != nil {
			return err
		}
		for i, field := range consolidate.AllFields {
			cell, _ := excelize.CoordinatesToCellName(col+i, headerRows)
			if err := f.SetCellValue(SheetName, cell, fieldLabels[field]); err != nil {
				return err
			}
		}
		col += width
	}

	lastCell, _ := excelize.CoordinatesToCellName(col-1, headerRows)
	return f.SetCellStyle(SheetName, "A1", lastCell, style)
}

func writeRow(f *excelize.File, res *consolidate.Resolution, i int, row consolidate.Resolved, meta consolidate.RowMeta, route consolidate.Route) error {
	sheetRow := headerRows + i + 1
	p := row.Participant

	identity := []any{i + 1, displayName(p), "", p.DealID}
	if p.Profile != nil {
		identity[2] = string(p.Profile.Class)
	}
	for c, v := range identity {
		cell, _ := excelize.CoordinatesToCellName(c+1, sheetRow)
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return err
		}
	}

	col := len(identityHeaders) + 1
	for _, city := range route {
		visit := res.Canonical(p.ID, city)
		for _, field := range consolidate.AllFields {
			g := field.Group()
			if cm, ok := meta.Cells[g]; g == consolidate.Unclassified || !ok || cm.Visible {
				if v := visit.Get(field); v != "" {
					cell, _ := excelize.CoordinatesToCellName(col, sheetRow)
					if err := f.SetCellValue(SheetName, cell, v); err != nil {
						return err
					}
				}
			}
			col++
		}
	}
	return nil
}

func displayName(p consolidate.Participant) string {
	if p.Profile == nil {
		return p.ID
	}
	name := p.Profile.LastName
	if p.Profile.FirstName != "" {
		if name != "" {
			name += " "
		}
		name += p.Profile.FirstName
	}
	if p.Profile.MiddleName != "" {
		name += " " + p.Profile.MiddleName
	}
	if name == "" {
		return p.ID
	}
	return name
}
