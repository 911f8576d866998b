package consolidate

import "fmt"

type AnomalyKind string

const (
	AnomalyUnknownLead     AnomalyKind = "unknown_lead"
	AnomalyUnknownGroup    AnomalyKind = "unknown_group"
	AnomalyPrimaryConflict AnomalyKind = "primary_conflict"
	AnomalyPrimaryMissing  AnomalyKind = "primary_missing"
)

// Anomaly is a data-quality problem the resolver worked around.
type Anomaly struct {
	Kind          AnomalyKind `json:"kind"`
	ParticipantID string      `json:"participant_id,omitempty"`
	UnitKey       string      `json:"unit_key,omitempty"`
	Message       string      `json:"message"`
}

// Resolved is a participant together with its sharing unit.
type Resolved struct {
	Participant Participant `json:"participant"`
	Unit        SharingUnit `json:"unit"`
}

// Resolution is the ordered, grouped view of one roster snapshot.
type Resolution struct {
	Rows      []Resolved `json:"rows"`
	Anomalies []Anomaly  `json:"anomalies,omitempty"`

	index map[string]int
}

// ResolveRoster orders the roster and attaches a sharing unit to every
// participant. Bad references never fail resolution; they degrade the
// participant to an ungrouped unit and are reported as anomalies.
func ResolveRoster(participants []Participant, groups []Group) *Resolution {
	ordered := Order(participants)
	r := newResolver(ordered, groups)

	res := &Resolution{
		Rows:  make([]Resolved, 0, len(ordered)),
		index: make(map[string]int, len(ordered)),
	}
	for i, p := range ordered {
		res.Rows = append(res.Rows, Resolved{Participant: p, Unit: r.unit(p)})
		res.index[p.ID] = i
	}
	res.Anomalies = r.anomalies(ordered)
	return res
}

// Resolve computes the sharing unit of a single participant against the
// full roster.
func Resolve(p Participant, roster []Participant, groups []Group) SharingUnit {
	return newResolver(Order(roster), groups).unit(p)
}

// Participant looks up a participant of the snapshot.
func (r *Resolution) Participant(id string) (Participant, bool) {
	i, ok := r.index[id]
	if !ok {
		return Participant{}, false
	}
	return r.Rows[i].Participant, true
}

// Unit returns the sharing unit of a participant of the snapshot.
func (r *Resolution) Unit(id string) (SharingUnit, bool) {
	i, ok := r.index[id]
	if !ok {
		return SharingUnit{}, false
	}
	return r.Rows[i].Unit, true
}

// Canonical returns the visit a participant should display for city: its own
// values, with every shared field group taken from the unit anchor.
func (r *Resolution) Canonical(id, city string) CityVisit {
	p, ok := r.Participant(id)
	if !ok {
		return CityVisit{City: city}
	}
	visit, _ := p.Visit(city)
	visit.City = city

	unit, _ := r.Unit(id)
	anchorID := unit.Anchor()
	if anchorID == "" || anchorID == id {
		return visit
	}
	anchor, _ := r.Participant(anchorID)
	anchorVisit, _ := anchor.Visit(city)
	for _, g := range SharedGroups {
		if !unit.Shares(g) {
			continue
		}
		for _, f := range GroupFields[g] {
			visit.Set(f, anchorVisit.Get(f))
		}
	}
	return visit
}

type resolver struct {
	byLead  map[string][]string
	byGroup map[string][]string
	groups  map[string]Group
}

func newResolver(ordered []Participant, groups []Group) *resolver {
	r := &resolver{
		byLead:  map[string][]string{},
		byGroup: map[string][]string{},
		groups:  make(map[string]Group, len(groups)),
	}
	for _, g := range groups {
		r.groups[g.ID] = g
	}
	for _, p := range ordered {
		if hasLead(p) {
			r.byLead[p.LeadID] = append(r.byLead[p.LeadID], p.ID)
		}
		if _, ok := r.groups[p.GroupID]; ok && p.GroupID != "" {
			r.byGroup[p.GroupID] = append(r.byGroup[p.GroupID], p.ID)
		}
	}
	return r
}

func (r *resolver) unit(p Participant) SharingUnit {
	if hasLead(p) {
		if members := r.byLead[p.LeadID]; len(members) >= 2 {
			return newUnit(UnitFamily, "lead:"+p.LeadID, members)
		}
	}
	if g, ok := r.groups[p.GroupID]; ok && p.GroupID != "" && g.Type == GroupMiniGroup {
		if members := r.byGroup[p.GroupID]; len(members) >= 2 {
			return newUnit(UnitMiniGroup, "group:"+p.GroupID, members)
		}
	}
	return newUnit(UnitNone, "solo:"+p.ID, []string{p.ID})
}

func (r *resolver) anomalies(ordered []Participant) []Anomaly {
	var out []Anomaly
	seen := map[string]bool{}
	byID := make(map[string]Participant, len(ordered))
	for _, p := range ordered {
		byID[p.ID] = p
	}

	for _, p := range ordered {
		if p.LeadID != "" && p.Lead == nil {
			out = append(out, Anomaly{
				Kind:          AnomalyUnknownLead,
				ParticipantID: p.ID,
				Message:       fmt.Sprintf("lead %s not found, treated as ungrouped", p.LeadID),
			})
		}
		if _, ok := r.groups[p.GroupID]; p.GroupID != "" && !ok {
			out = append(out, Anomaly{
				Kind:          AnomalyUnknownGroup,
				ParticipantID: p.ID,
				Message:       fmt.Sprintf("group %s not found, treated as ungrouped", p.GroupID),
			})
		}

		u := r.unit(p)
		if u.Kind == UnitNone || seen[u.Key] {
			continue
		}
		seen[u.Key] = true

		primaries := 0
		for _, id := range u.Members {
			m := byID[id]
			if (u.Kind == UnitFamily && isLeadPrimary(m)) || (u.Kind == UnitMiniGroup && m.IsGroupPrimary) {
				primaries++
			}
		}
		switch {
		case primaries == 0:
			out = append(out, Anomaly{
				Kind:    AnomalyPrimaryMissing,
				UnitKey: u.Key,
				Message: fmt.Sprintf("no primary member, anchoring on %s", u.Anchor()),
			})
		case primaries > 1:
			out = append(out, Anomaly{
				Kind:    AnomalyPrimaryConflict,
				UnitKey: u.Key,
				Message: fmt.Sprintf("%d primary members, anchoring on %s", primaries, u.Anchor()),
			})
		}
	}
	return out
}

func newUnit(kind UnitKind, key string, members []string) SharingUnit {
	return SharingUnit{
		Kind:    kind,
		Key:     key,
		Members: append([]string(nil), members...),
		Sharing: SharingFor(kind),
	}
}

func hasLead(p Participant) bool {
	return p.LeadID != "" && p.Lead != nil
}
