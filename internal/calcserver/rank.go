package calcserver

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/expcalc/internal/analysis"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/location"
)

// RankLocations answers {method?, top?, multiplier?, game?, location_id?} with
// {rankings: [{location_id, location, version, method, expected_exp,
// encounter_rate, efficiency}]}, highest efficiency first. An omitted method
// ranks every method together; top <= 0 returns every row.
func (s *Server) RankLocations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.locations == nil || s.analyzer == nil {
		return nil, status.Error(codes.FailedPrecondition, "no encounter dataset loaded")
	}
	multiplier, err := optionalBoolField(req, "multiplier")
	if err != nil {
		return nil, invalid(err)
	}
	top, err := optionalIntField(req, "top", 0)
	if err != nil {
		return nil, invalid(err)
	}
	methodName, err := optionalStringField(req, "method")
	if err != nil {
		return nil, invalid(err)
	}
	game, err := optionalStringField(req, "game")
	if err != nil {
		return nil, invalid(err)
	}
	locationID, err := optionalStringField(req, "location_id")
	if err != nil {
		return nil, invalid(err)
	}

	var method encounter.Method
	if methodName != "" {
		if method, err = encounter.ParseMethod(methodName); err != nil {
			return nil, invalid(err)
		}
	}

	ds := s.locations.Dataset()
	if locationID != "" {
		loc, ok := s.locations.Get(locationID)
		if !ok {
			return nil, status.Errorf(codes.NotFound, "location %q not found", locationID)
		}
		ds = &location.Dataset{Rates: ds.Rates, Locations: []*location.Location{loc}}
	}
	if game != "" {
		v, err := location.ParseVersion(game)
		if err != nil {
			return nil, invalid(err)
		}
		ds = ds.Filter(v)
	}

	results, err := s.analyzer.Analyze(ctx, ds, multiplier)
	if err != nil {
		if ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		return nil, status.Error(codes.Internal, fmt.Sprintf("analyzing dataset: %v", err))
	}

	var rows []analysis.Ranked
	if methodName == "" {
		rows = analysis.RankAll(results, top)
	} else {
		rows = analysis.Rank(results, method, top)
	}
	out := make([]interface{}, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]interface{}{
			"location_id":    r.Location.ID,
			"location":       r.Location.Name,
			"version":        string(r.Location.Version),
			"method":         r.Method.String(),
			"expected_exp":   r.Expectation.ExpectedExp,
			"encounter_rate": r.EncounterRate,
			"efficiency":     r.Efficiency,
		})
	}
	return structpb.NewStruct(map[string]interface{}{"rankings": out})
}
