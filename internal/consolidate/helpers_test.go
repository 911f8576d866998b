package consolidate

type option func(*Participant)

func tourist(id string, opts ...option) Participant {
	p := Participant{ID: id, DealID: "deal-" + id}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func withLead(id string, status LeadStatus) option {
	return func(p *Participant) {
		p.LeadID = id
		p.Lead = &Lead{ID: id, Status: status}
	}
}

func withDanglingLead(id string) option {
	return func(p *Participant) { p.LeadID = id }
}

func leadPrimary() option {
	return func(p *Participant) {
		if p.Profile == nil {
			p.Profile = &Profile{Class: ClassAdult}
		}
		p.Profile.IsPrimary = true
	}
}

func named(first string) option {
	return func(p *Participant) {
		if p.Profile == nil {
			p.Profile = &Profile{Class: ClassAdult}
		}
		p.Profile.FirstName = first
	}
}

func inGroup(id string, primary bool) option {
	return func(p *Participant) {
		p.GroupID = id
		p.IsGroupPrimary = primary
	}
}

func withVisit(v CityVisit) option {
	return func(p *Participant) { p.Visits = append(p.Visits, v) }
}

func ids(ps []Participant) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func opTargets(ops []UpsertOp) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.ParticipantID
	}
	return out
}

// memoryStore applies ops the way the SQL sink does.
type memoryStore map[visitKey]CityVisit

func (m memoryStore) apply(ops []UpsertOp) {
	for _, op := range ops {
		k := visitKey{op.ParticipantID, op.City}
		v := m[k]
		if op.FillEmptyOnly && v.Get(op.Field) != "" {
			continue
		}
		v.City = op.City
		v.Set(op.Field, op.Value)
		m[k] = v
	}
}

func (m memoryStore) clone() memoryStore {
	out := make(memoryStore, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
