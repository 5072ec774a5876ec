package models

import "encoding/json"

// MarshalJSON serializes a rehydrated record as a flat object: every original
// field first, then the resolved canonical fields on top. Canonical keys
// always win so that re-serializing and re-normalizing is a fixed point.
func (r ResultRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+7)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["id"] = r.ID
	if r.Latitude != nil {
		out["latitude"] = *r.Latitude
	}
	if r.Longitude != nil {
		out["longitude"] = *r.Longitude
	}
	if r.HPI != nil {
		out["hpi"] = *r.HPI
	}
	if r.HEI != nil {
		out["hei"] = *r.HEI
	}
	if r.CD != nil {
		out["cd"] = *r.CD
	}
	out["category"] = r.Category
	return json.Marshal(out)
}
