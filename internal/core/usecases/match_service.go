package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/matching"
	"github.com/samirrijal/civicfix/internal/core/ports"
	"github.com/samirrijal/civicfix/internal/pkg/metrics"
	"github.com/samirrijal/civicfix/internal/pkg/telemetry"
)

// DirectoryCacheKey holds the cached verified-officials snapshot.
const DirectoryCacheKey = "officials:verified"

const directoryCacheTTL = 60 // seconds

var tracer = otel.Tracer("github.com/samirrijal/civicfix/internal/core/usecases")

// MatchOutcome is a matcher result plus the size of the pool it ran over.
type MatchOutcome struct {
	Result       matching.Result
	TotalChecked int
}

// MatchService finds the official responsible for a location.
type MatchService struct {
	profiles ports.ProfileRepository
	cache    ports.CacheService
	matcher  *matching.Matcher
}

// NewMatchService creates a new MatchService. cache may be nil.
func NewMatchService(profiles ports.ProfileRepository, cache ports.CacheService, policy matching.Policy) *MatchService {
	return &MatchService{profiles: profiles, cache: cache, matcher: matching.New(policy)}
}

// MatchOfficial validates the query, snapshots the directory and runs the
// matcher. A directory failure short-circuits with ErrUpstreamUnavailable.
func (s *MatchService) MatchOfficial(ctx context.Context, q matching.LocationQuery) (*MatchOutcome, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "MatchService.MatchOfficial")
	defer span.End()

	officials, err := s.verifiedOfficials(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	candidates := make([]matching.Candidate, 0, len(officials))
	for i := range officials {
		if officials[i].Eligible() {
			candidates = append(candidates, officials[i].Candidate())
		}
	}

	res := s.matcher.Match(q, candidates)
	out := &MatchOutcome{Result: res, TotalChecked: len(candidates)}

	outcome := "matched"
	switch {
	case len(candidates) == 0:
		outcome = "no_candidates"
	case res.BestMatch == nil:
		outcome = "no_good_match"
	}
	metrics.MatchOutcomes.WithLabelValues(outcome).Inc()
	span.SetAttributes(
		attribute.Int("match.candidates", len(candidates)),
		attribute.String("match.outcome", outcome),
	)

	log := slog.Default()
	if res.BestMatch != nil {
		span.SetAttributes(attribute.String(telemetry.AttrOfficialID, res.BestMatch.OfficialID))
		metrics.MatchBestScore.Observe(float64(res.BestMatch.Score))
		log.InfoContext(ctx, "official matched",
			"official_id", res.BestMatch.OfficialID,
			"score", res.BestMatch.Score,
			"reasons", res.BestMatch.MatchReasons,
			"alternatives", len(res.Alternatives),
			"checked", len(candidates),
		)
	} else {
		log.InfoContext(ctx, "no official matched", "outcome", outcome, "checked", len(candidates))
	}

	return out, nil
}

// InvalidateDirectory drops the cached officials snapshot.
func (s *MatchService) InvalidateDirectory(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, DirectoryCacheKey)
	}
}

func (s *MatchService) verifiedOfficials(ctx context.Context) ([]domain.Profile, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, DirectoryCacheKey); err == nil {
			var officials []domain.Profile
			if err := json.Unmarshal(data, &officials); err == nil {
				metrics.CacheHits.WithLabelValues("officials").Inc()
				return officials, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("officials").Inc()
	}

	officials, err := s.profiles.ListVerifiedOfficials(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(officials); err == nil {
			_ = s.cache.Set(ctx, DirectoryCacheKey, data, directoryCacheTTL)
		}
	}
	return officials, nil
}
