package models

// Station is one scoring activity with its field-set definition. Stations in
// bracket mode run elimination rounds instead of a single scoring pass.
type Station struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        EntityType `json:"type,omitempty"`
	BracketMode bool       `json:"bracketMode,omitempty"`
	Fields      []Field    `json:"fields,omitempty"`
}

// Catalog is the station/competitor configuration fetched from the server and
// cached on the device. CommonScoring fields are appended to every station's
// form.
type Catalog struct {
	Stations      []Station `json:"stations"`
	CommonScoring []Field   `json:"common_scoring,omitempty"`
}

// JudgeFields returns the station's fields plus the shared scoring block,
// filtered to the judge-facing audience.
func (c Catalog) JudgeFields(stationID string) []Field {
	var out []Field
	for _, s := range c.Stations {
		if s.ID != stationID {
			continue
		}
		for _, f := range append(append([]Field{}, s.Fields...), c.CommonScoring...) {
			if f.Audience == "" || f.Audience == "judge" {
				out = append(out, f)
			}
		}
	}
	return out
}

// StationByID looks a station up in the catalog.
func (c Catalog) StationByID(id string) (Station, bool) {
	for _, s := range c.Stations {
		if s.ID == id {
			return s, true
		}
	}
	return Station{}, false
}
