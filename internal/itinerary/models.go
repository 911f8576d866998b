package itinerary

import "backend-tourdesk/internal/consolidate"

// Roster is the consolidated view of one event: ordered rows, the visits each
// row should display, and how shared cells span rows.
type Roster struct {
	EventID   string                `json:"event_id"`
	Cities    consolidate.Route     `json:"cities"`
	Rows      []Row                 `json:"rows"`
	Anomalies []consolidate.Anomaly `json:"anomalies"`
}

type Row struct {
	Participant consolidate.Participant `json:"participant"`
	UnitKey     string                  `json:"unit_key"`
	UnitKind    consolidate.UnitKind    `json:"unit_kind"`
	Visits      []consolidate.CityVisit `json:"visits"`
	Meta        consolidate.RowMeta     `json:"meta"`
}

type EditRequest struct {
	Edits []consolidate.Edit `json:"edits" validate:"required,min=1"`
}

// Outcome is the wire form of one executed op.
type Outcome struct {
	consolidate.UpsertOp
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type EditResponse struct {
	Applied int       `json:"applied"`
	Failed  int       `json:"failed"`
	Results []Outcome `json:"results"`
}

// Update is published to stream subscribers after a successful write.
type Update struct {
	Kind    string `json:"kind"`
	EventID string `json:"event_id"`
	Applied int    `json:"applied"`
}

func toResponse(results []consolidate.OpResult) EditResponse {
	resp := EditResponse{Results: make([]Outcome, len(results))}
	for i, r := range results {
		out := Outcome{UpsertOp: r.Op, OK: r.OK()}
		if r.Err != nil {
			out.Error = r.Err.Error()
			resp.Failed++
		} else {
			resp.Applied++
		}
		resp.Results[i] = out
	}
	return resp
}
