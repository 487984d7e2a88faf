package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within WGS 84 ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Location is the administrative address of an issue or a jurisdiction.
// Empty strings mean the field is unknown.
type Location struct {
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Ward     string `json:"ward,omitempty"`
	Area     string `json:"area,omitempty"`
}

// Label renders "area, city, state" skipping unknown parts.
func (l Location) Label() string {
	out := ""
	for _, part := range []string{l.Area, l.City, l.State} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}
