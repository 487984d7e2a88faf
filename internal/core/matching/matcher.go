// Package matching ranks government officials against the location of a
// reported issue. It is a pure function of its inputs: callers fetch the
// candidate pool and persist the outcome.
package matching

import (
	"sort"
	"strconv"
	"strings"
)

// Rule weights.
const (
	PointsExactPincode = 100
	PointsExactWard    = 80
	PointsExactArea    = 70
	PointsCoverage     = 60
	PointsCity         = 50
	PointsDistrict     = 40
	PointsState        = 30

	nearbyPincodeMaxDistance = 10
	nearbyPincodeBase        = 20
	nearbyPincodeFloor       = 5
)

// Reason labels, in evaluation order.
const (
	ReasonExactPincode  = "Exact pincode match"
	ReasonExactWard     = "Exact ward match"
	ReasonExactArea     = "Exact area match"
	ReasonCoverage      = "Within coverage area"
	ReasonCity          = "City match"
	ReasonDistrict      = "District match"
	ReasonState         = "State match"
	ReasonNearbyPincode = "Nearby pincode"
)

// Default selection policy.
const (
	DefaultBestMatchMinScore   = 30
	DefaultAlternativeMinScore = 20
	DefaultMaxAlternatives     = 3
)

// Policy holds the tunable selection thresholds. Scoring weights are fixed.
type Policy struct {
	BestMatchMinScore   int `mapstructure:"best_match_min_score"`
	AlternativeMinScore int `mapstructure:"alternative_min_score"`
	MaxAlternatives     int `mapstructure:"max_alternatives"`
}

// DefaultPolicy returns the 30 / 20 / 3 policy.
func DefaultPolicy() Policy {
	return Policy{
		BestMatchMinScore:   DefaultBestMatchMinScore,
		AlternativeMinScore: DefaultAlternativeMinScore,
		MaxAlternatives:     DefaultMaxAlternatives,
	}
}

// GeoBounds is an axis-aligned latitude/longitude rectangle. A nil side means
// the bound was never configured for the official.
type GeoBounds struct {
	North *float64 `json:"north,omitempty"`
	South *float64 `json:"south,omitempty"`
	East  *float64 `json:"east,omitempty"`
	West  *float64 `json:"west,omitempty"`
}

// Complete reports whether all four sides are set.
func (b *GeoBounds) Complete() bool {
	return b != nil && b.North != nil && b.South != nil && b.East != nil && b.West != nil
}

// Contains reports whether the point lies inside the rectangle, edges included.
func (b *GeoBounds) Contains(lat, lon float64) bool {
	if !b.Complete() {
		return false
	}
	return lat >= *b.South && lat <= *b.North && lon >= *b.West && lon <= *b.East
}

// LocationQuery describes where an issue was reported. Every field is optional.
type LocationQuery struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	City      *string  `json:"city,omitempty"`
	State     *string  `json:"state,omitempty"`
	District  *string  `json:"district,omitempty"`
	Pincode   *string  `json:"pincode,omitempty"`
	Ward      *string  `json:"ward,omitempty"`
	Area      *string  `json:"area,omitempty"`
}

// Candidate is a verified official together with their jurisdiction.
type Candidate struct {
	OfficialID string     `json:"official_id"`
	FullName   string     `json:"full_name"`
	City       *string    `json:"city,omitempty"`
	State      *string    `json:"state,omitempty"`
	District   *string    `json:"district,omitempty"`
	Pincode    *string    `json:"pincode,omitempty"`
	Ward       *string    `json:"ward,omitempty"`
	Area       *string    `json:"area,omitempty"`
	GeoBounds  *GeoBounds `json:"geo_bounds,omitempty"`
}

// ScoredCandidate is a candidate with the rules that fired for it.
type ScoredCandidate struct {
	Candidate
	Score        int      `json:"score"`
	MatchReasons []string `json:"match_reasons"`
}

// Result is the outcome of one matching request.
type Result struct {
	BestMatch    *ScoredCandidate  `json:"best_match"`
	Alternatives []ScoredCandidate `json:"alternatives"`
}

// Matcher applies a selection policy on top of the fixed scoring rules.
// The zero value is not useful; use New.
type Matcher struct {
	policy Policy
}

// New creates a Matcher. Non-positive slot counts fall back to the default.
func New(p Policy) *Matcher {
	if p.MaxAlternatives <= 0 {
		p.MaxAlternatives = DefaultMaxAlternatives
	}
	return &Matcher{policy: p}
}

// Policy returns the policy in effect.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// Match scores and ranks candidates against the query using DefaultPolicy.
func Match(query LocationQuery, candidates []Candidate) Result {
	return New(DefaultPolicy()).Match(query, candidates)
}

// Match scores every candidate, ranks them and selects the best match and
// alternatives. Candidates is never modified.
func (m *Matcher) Match(query LocationQuery, candidates []Candidate) Result {
	res := Result{Alternatives: []ScoredCandidate{}}
	if len(candidates) == 0 {
		return res
	}

	ranked := Rank(query, candidates)

	if top := ranked[0]; top.Score >= m.policy.BestMatchMinScore {
		res.BestMatch = &top
	}

	end := 1 + m.policy.MaxAlternatives
	if end > len(ranked) {
		end = len(ranked)
	}
	for _, alt := range ranked[1:end] {
		if alt.Score >= m.policy.AlternativeMinScore {
			res.Alternatives = append(res.Alternatives, alt)
		}
	}
	return res
}

// Rank scores every candidate and returns them by descending score. Equal
// scores keep their input order.
func Rank(query LocationQuery, candidates []Candidate) []ScoredCandidate {
	ranked := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		ranked[i] = Score(query, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Score evaluates every rule for a single candidate.
func Score(q LocationQuery, c Candidate) ScoredCandidate {
	sc := ScoredCandidate{Candidate: c, MatchReasons: []string{}}
	add := func(points int, reason string) {
		sc.Score += points
		sc.MatchReasons = append(sc.MatchReasons, reason)
	}

	if a, b, ok := both(c.Pincode, q.Pincode); ok && a == b {
		add(PointsExactPincode, ReasonExactPincode)
	}
	if equalFold(c.Ward, q.Ward) {
		add(PointsExactWard, ReasonExactWard)
	}
	if equalFold(c.Area, q.Area) {
		add(PointsExactArea, ReasonExactArea)
	}
	if q.Latitude != nil && q.Longitude != nil && c.GeoBounds.Contains(*q.Latitude, *q.Longitude) {
		add(PointsCoverage, ReasonCoverage)
	}
	if equalFold(c.City, q.City) {
		add(PointsCity, ReasonCity)
	}
	if equalFold(c.District, q.District) {
		add(PointsDistrict, ReasonDistrict)
	}
	if equalFold(c.State, q.State) {
		add(PointsState, ReasonState)
	}
	if points, ok := nearbyPincodePoints(c.Pincode, q.Pincode); ok {
		add(points, ReasonNearbyPincode)
	}

	return sc
}

// nearbyPincodePoints also fires for identical pincodes (distance 0), on top
// of the exact rule.
func nearbyPincodePoints(candidate, query *string) (int, bool) {
	a, b, ok := both(candidate, query)
	if !ok {
		return 0, false
	}
	ca, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	if err != nil {
		return 0, false
	}
	qb, err := strconv.ParseInt(strings.TrimSpace(b), 10, 64)
	if err != nil {
		return 0, false
	}
	d := absDiff(ca, qb)
	if d > nearbyPincodeMaxDistance {
		return 0, false
	}
	return max(nearbyPincodeBase-int(d), nearbyPincodeFloor), true
}

// absDiff is |a-b| without wrapping; the true difference always fits in a uint64.
func absDiff(a, b int64) uint64 {
	if a < b {
		a, b = b, a
	}
	return uint64(a) - uint64(b)
}

func both(a, b *string) (string, string, bool) {
	if !present(a) || !present(b) {
		return "", "", false
	}
	return *a, *b, true
}

func equalFold(a, b *string) bool {
	x, y, ok := both(a, b)
	return ok && strings.EqualFold(x, y)
}

// present treats the empty string like a missing field.
func present(s *string) bool {
	return s != nil && *s != ""
}
