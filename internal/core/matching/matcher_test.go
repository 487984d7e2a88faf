package matching_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicfix/internal/core/matching"
)

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }

func ids(sc []matching.ScoredCandidate) []string {
	out := make([]string, 0, len(sc))
	for _, c := range sc {
		out = append(out, c.OfficialID)
	}
	return out
}

func bounds(n, s, e, w float64) *matching.GeoBounds {
	return &matching.GeoBounds{North: num(n), South: num(s), East: num(e), West: num(w)}
}

func TestMatch_EmptyCandidates(t *testing.T) {
	res := matching.Match(matching.LocationQuery{City: str("Delhi")}, nil)

	assert.Nil(t, res.BestMatch)
	assert.NotNil(t, res.Alternatives)
	assert.Empty(t, res.Alternatives)
}

func TestMatch_ScenarioA_FullJurisdiction(t *testing.T) {
	q := matching.LocationQuery{
		Pincode: str("110001"),
		Ward:    str("Ward 5"),
		City:    str("Delhi"),
		State:   str("Delhi"),
	}
	c := matching.Candidate{
		OfficialID: "o1",
		Pincode:    str("110001"),
		Ward:       str("ward 5"),
		City:       str("DELHI"),
		State:      str("delhi"),
	}

	res := matching.Match(q, []matching.Candidate{c})

	require.NotNil(t, res.BestMatch)
	// 100 + 80 + 50 + 30, plus 20 from the nearby rule at distance 0.
	assert.Equal(t, 280, res.BestMatch.Score)
	assert.Equal(t, []string{
		matching.ReasonExactPincode,
		matching.ReasonExactWard,
		matching.ReasonCity,
		matching.ReasonState,
		matching.ReasonNearbyPincode,
	}, res.BestMatch.MatchReasons)
}

func TestMatch_ScenarioB_CityAndState(t *testing.T) {
	q := matching.LocationQuery{City: str("Mumbai"), State: str("Maharashtra")}
	c := matching.Candidate{OfficialID: "o1", City: str("Mumbai"), State: str("Maharashtra")}

	res := matching.Match(q, []matching.Candidate{c})

	require.NotNil(t, res.BestMatch)
	assert.Equal(t, 80, res.BestMatch.Score)
	assert.Equal(t, []string{"City match", "State match"}, res.BestMatch.MatchReasons)
}

func TestMatch_ScenarioC_NearbyPincodeBelowThresholds(t *testing.T) {
	q := matching.LocationQuery{Pincode: str("400001")}
	c := matching.Candidate{OfficialID: "o1", Pincode: str("400005")}

	sc := matching.Score(q, c)
	assert.Equal(t, 16, sc.Score)
	assert.Equal(t, []string{matching.ReasonNearbyPincode}, sc.MatchReasons)

	res := matching.Match(q, []matching.Candidate{c})
	assert.Nil(t, res.BestMatch)
	assert.Empty(t, res.Alternatives)
}

func TestMatch_ScenarioD_CoverageOnly(t *testing.T) {
	q := matching.LocationQuery{Latitude: num(28.61), Longitude: num(77.21)}
	c := matching.Candidate{OfficialID: "o1", GeoBounds: bounds(28.7, 28.5, 77.3, 77.1)}

	res := matching.Match(q, []matching.Candidate{c})

	require.NotNil(t, res.BestMatch)
	assert.Equal(t, 60, res.BestMatch.Score)
	assert.Equal(t, []string{"Within coverage area"}, res.BestMatch.MatchReasons)
}

func TestMatch_ScenarioE_AlternativesFilteredInPlace(t *testing.T) {
	q := matching.LocationQuery{
		Latitude:  num(18.93),
		Longitude: num(72.83),
		Ward:      str("W1"),
		State:     str("Maharashtra"),
		Pincode:   str("5"),
	}
	candidates := []matching.Candidate{
		{OfficialID: "s10", Pincode: str("15")},                            // nearby d=10
		{OfficialID: "s30", State: str("maharashtra")},                     // state
		{OfficialID: "s90", Ward: str("w1"), Pincode: str("15")},           // ward + nearby d=10
		{OfficialID: "s60", GeoBounds: bounds(19.0, 18.9, 72.9, 72.8)},     // coverage
		{OfficialID: "s45", State: str("Maharashtra"), Pincode: str("10")}, // state + nearby d=5
	}

	res := matching.Match(q, candidates)

	require.NotNil(t, res.BestMatch)
	assert.Equal(t, "s90", res.BestMatch.OfficialID)
	assert.Equal(t, 90, res.BestMatch.Score)
	assert.Equal(t, []string{"s60", "s45", "s30"}, ids(res.Alternatives))
	assert.Equal(t, 60, res.Alternatives[0].Score)
	assert.Equal(t, 45, res.Alternatives[1].Score)
	assert.Equal(t, 30, res.Alternatives[2].Score)
}

func TestMatch_AlternativeBelowThresholdDropped(t *testing.T) {
	q := matching.LocationQuery{City: str("Pune"), State: str("Maharashtra"), Pincode: str("411001")}
	candidates := []matching.Candidate{
		{OfficialID: "p10", Pincode: str("411011")},
		{OfficialID: "p19", Pincode: str("411002")},
		{OfficialID: "best", City: str("Pune"), State: str("Maharashtra")},
		{OfficialID: "p15", Pincode: str("411006")},
		{OfficialID: "alt", State: str("Maharashtra")},
	}

	res := matching.Match(q, candidates)

	require.NotNil(t, res.BestMatch)
	assert.Equal(t, "best", res.BestMatch.OfficialID)
	// Ranked: best(80), alt(30), p19(19), p15(15), p10(10).
	assert.Equal(t, []string{"alt"}, ids(res.Alternatives))
}

func TestMatch_NoGoodMatchStillReturnsAlternatives(t *testing.T) {
	q := matching.LocationQuery{Pincode: str("560001")}
	candidates := []matching.Candidate{
		{OfficialID: "a", Pincode: str("560002")}, // 19
		{OfficialID: "b", Pincode: str("560001")}, // 100 + 20
	}
	// Raise the bar so that nobody qualifies as best match.
	m := matching.New(matching.Policy{BestMatchMinScore: 150, AlternativeMinScore: 19, MaxAlternatives: 3})

	res := m.Match(q, candidates)

	assert.Nil(t, res.BestMatch)
	assert.Equal(t, []string{"a"}, ids(res.Alternatives))
}

func TestMatch_TopScoreBelowThreshold(t *testing.T) {
	q := matching.LocationQuery{District: str("Pune")}
	c := matching.Candidate{OfficialID: "o", State: str("Goa")}

	res := matching.Match(q, []matching.Candidate{c, c})

	assert.Nil(t, res.BestMatch)
	assert.Empty(t, res.Alternatives)
}

func TestMatch_TieBreakKeepsInputOrder(t *testing.T) {
	q := matching.LocationQuery{City: str("Chennai")}
	var candidates []matching.Candidate
	for i := 0; i < 6; i++ {
		candidates = append(candidates, matching.Candidate{OfficialID: fmt.Sprintf("o%d", i), City: str("chennai")})
	}

	res := matching.Match(q, candidates)

	require.NotNil(t, res.BestMatch)
	assert.Equal(t, "o0", res.BestMatch.OfficialID)
	assert.Equal(t, []string{"o1", "o2", "o3"}, ids(res.Alternatives))
}

func TestMatch_Deterministic(t *testing.T) {
	q := matching.LocationQuery{City: str("Kochi"), State: str("Kerala"), Pincode: str("682001")}
	candidates := []matching.Candidate{
		{OfficialID: "a", City: str("Kochi")},
		{OfficialID: "b", State: str("Kerala"), Pincode: str("682003")},
		{OfficialID: "c", City: str("kochi")},
		{OfficialID: "d", Pincode: str("682001")},
	}

	first := matching.Match(q, candidates)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, matching.Match(q, candidates))
	}
}

func TestMatch_DoesNotMutateCandidates(t *testing.T) {
	q := matching.LocationQuery{City: str("Agra")}
	candidates := []matching.Candidate{
		{OfficialID: "low"},
		{OfficialID: "high", City: str("Agra")},
	}

	_ = matching.Match(q, candidates)

	assert.Equal(t, "low", candidates[0].OfficialID)
	assert.Equal(t, "high", candidates[1].OfficialID)
}

func TestMatch_AlternativesNeverIncludeBest(t *testing.T) {
	q := matching.LocationQuery{City: str("Surat"), State: str("Gujarat")}
	candidates := []matching.Candidate{
		{OfficialID: "a", City: str("Surat"), State: str("Gujarat")},
		{OfficialID: "b", City: str("Surat")},
		{OfficialID: "c", State: str("Gujarat")},
		{OfficialID: "d", State: str("Gujarat")},
		{OfficialID: "e", State: str("Gujarat")},
	}

	res := matching.Match(q, candidates)

	require.NotNil(t, res.BestMatch)
	assert.LessOrEqual(t, len(res.Alternatives), 3)
	for _, alt := range res.Alternatives {
		assert.NotEqual(t, res.BestMatch.OfficialID, alt.OfficialID)
	}
}

func TestScore_Rules(t *testing.T) {
	tests := []struct {
		name    string
		query   matching.LocationQuery
		cand    matching.Candidate
		score   int
		reasons []string
	}{
		{
			name:    "pincode is case sensitive",
			query:   matching.LocationQuery{Pincode: str("AB1")},
			cand:    matching.Candidate{Pincode: str("ab1")},
			score:   0,
			reasons: []string{},
		},
		{
			name:    "empty string is absent",
			query:   matching.LocationQuery{City: str(""), Ward: str("")},
			cand:    matching.Candidate{City: str(""), Ward: str("")},
			score:   0,
			reasons: []string{},
		},
		{
			name:    "one side missing never fires",
			query:   matching.LocationQuery{City: str("Delhi"), District: nil},
			cand:    matching.Candidate{City: nil, District: str("Central")},
			score:   0,
			reasons: []string{},
		},
		{
			name:    "district and area",
			query:   matching.LocationQuery{District: str("North"), Area: str("Karol Bagh")},
			cand:    matching.Candidate{District: str("north"), Area: str("KAROL BAGH")},
			score:   pointsAreaDistrict(),
			reasons: []string{matching.ReasonExactArea, matching.ReasonDistrict},
		},
		{
			name:    "nearby floor at distance 10",
			query:   matching.LocationQuery{Pincode: str("100000")},
			cand:    matching.Candidate{Pincode: str("100010")},
			score:   10,
			reasons: []string{matching.ReasonNearbyPincode},
		},
		{
			name:    "distance 11 does not fire",
			query:   matching.LocationQuery{Pincode: str("100000")},
			cand:    matching.Candidate{Pincode: str("100011")},
			score:   0,
			reasons: []string{},
		},
		{
			name:    "non-numeric pincode is ignored",
			query:   matching.LocationQuery{Pincode: str("11000A")},
			cand:    matching.Candidate{Pincode: str("110001")},
			score:   0,
			reasons: []string{},
		},
		{
			name:    "identical pincode double counts",
			query:   matching.LocationQuery{Pincode: str("110001")},
			cand:    matching.Candidate{Pincode: str("110001")},
			score:   120,
			reasons: []string{matching.ReasonExactPincode, matching.ReasonNearbyPincode},
		},
		{
			name:    "extreme pincodes do not wrap",
			query:   matching.LocationQuery{Pincode: str("-9223372036854775808")},
			cand:    matching.Candidate{Pincode: str("9223372036854775807")},
			score:   0,
			reasons: []string{},
		},
		{
			name:    "pincode beyond int64 is ignored",
			query:   matching.LocationQuery{Pincode: str("99999999999999999999")},
			cand:    matching.Candidate{Pincode: str("99999999999999999995")},
			score:   0,
			reasons: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := matching.Score(tt.query, tt.cand)
			assert.Equal(t, tt.score, sc.Score)
			assert.Equal(t, tt.reasons, sc.MatchReasons)
		})
	}
}

func pointsAreaDistrict() int {
	return matching.PointsExactArea + matching.PointsDistrict
}

func TestScore_Coverage(t *testing.T) {
	b := bounds(10, 0, 10, 0)

	tests := []struct {
		name   string
		lat    *float64
		lon    *float64
		bounds *matching.GeoBounds
		fires  bool
	}{
		{"inside", num(5), num(5), b, true},
		{"on edge", num(10), num(0), b, true},
		{"zero coordinates inside", num(0), num(0), b, true},
		{"north of box", num(10.1), num(5), b, false},
		{"west of box", num(5), num(-0.1), b, false},
		{"missing longitude", num(5), nil, b, false},
		{"incomplete bounds", num(5), num(5), &matching.GeoBounds{North: num(10), South: num(0), East: num(10)}, false},
		{"no bounds", num(5), num(5), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := matching.Score(
				matching.LocationQuery{Latitude: tt.lat, Longitude: tt.lon},
				matching.Candidate{GeoBounds: tt.bounds},
			)
			if tt.fires {
				assert.Equal(t, matching.PointsCoverage, sc.Score)
			} else {
				assert.Zero(t, sc.Score)
			}
		})
	}
}

func TestNew_DefaultsSlotCount(t *testing.T) {
	m := matching.New(matching.Policy{BestMatchMinScore: 30, AlternativeMinScore: 20})
	assert.Equal(t, matching.DefaultMaxAlternatives, m.Policy().MaxAlternatives)
}
