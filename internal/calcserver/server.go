package calcserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/expcalc/internal/analysis"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/growth"
	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/game/projection"
)

// Recorder receives request outcomes. observability.Metrics satisfies it.
type Recorder interface {
	RequestHandled(method, code string)
	DivisionUndefined()
}

type nopRecorder struct{}

func (nopRecorder) RequestHandled(string, string) {}
func (nopRecorder) DivisionUndefined()            {}

// Server implements CalculatorServer on top of an encounter.Calculator.
type Server struct {
	calc         *encounter.Calculator
	referenceMax int
	recorder     Recorder
	logger       *zap.Logger
	locations    *location.Manager
	analyzer     *analysis.Analyzer
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder sets the request outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithLogger sets the server's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithReferenceMaxRate sets the reference rate used when an Efficiency request
// omits one.
func WithReferenceMaxRate(n int) Option {
	return func(s *Server) { s.referenceMax = n }
}

// WithLocations serves RankLocations from the dataset indexed by m, evaluated
// with a. Without it RankLocations fails with FailedPrecondition.
func WithLocations(m *location.Manager, a *analysis.Analyzer) Option {
	return func(s *Server) {
		s.locations = m
		s.analyzer = a
	}
}

// NewServer creates a Server.
//
// Precondition: calc must be non-nil.
func NewServer(calc *encounter.Calculator, opts ...Option) *Server {
	s := &Server{
		calc:         calc,
		referenceMax: encounter.DefaultReferenceMaxRate,
		recorder:     nopRecorder{},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UnaryInterceptor logs every call and reports its status code to the recorder.
func (s *Server) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		s.recorder.RequestHandled(info.FullMethod, code.String())
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			s.logger.Warn("rpc failed", append(fields, zap.Error(err))...)
		} else {
			s.logger.Debug("rpc handled", fields...)
		}
		return resp, err
	}
}

func invalid(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

// CumulativeExp answers {curve, level} with {curve, level, exp}.
func (s *Server) CumulativeExp(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "curve")
	if err != nil {
		return nil, invalid(err)
	}
	c, err := growth.ParseCurve(name)
	if err != nil {
		return nil, invalid(err)
	}
	level, err := intField(req, "level")
	if err != nil {
		return nil, invalid(err)
	}
	if level < 1 || level > growth.MaxLevel {
		return nil, invalid(fmt.Errorf("level must be in [1, %d], got %d", growth.MaxLevel, level))
	}
	return structpb.NewStruct(map[string]interface{}{
		"curve": c.String(),
		"level": level,
		"exp":   growth.CumulativeExp(c, level),
	})
}

// BattlesNeeded answers {exp_needed, per_battle} with {battles}. A
// non-positive or infinite per_battle fails with FailedPrecondition and a count
// too large to represent with OutOfRange.
func (s *Server) BattlesNeeded(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	need, err := intField(req, "exp_needed")
	if err != nil {
		return nil, invalid(err)
	}
	perBattle, err := numberField(req, "per_battle")
	if err != nil {
		return nil, invalid(err)
	}
	battles, err := projection.BattlesNeeded(need, perBattle)
	switch {
	case errors.Is(err, projection.ErrDivisionUndefined):
		s.recorder.DivisionUndefined()
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, projection.ErrBattleCountOverflow):
		return nil, status.Error(codes.OutOfRange, err.Error())
	case err != nil:
		return nil, invalid(err)
	}
	return structpb.NewStruct(map[string]interface{}{"battles": battles})
}

// MethodExpectation answers {multiplier, slots: [{species, min_level,
// max_level, weight}]} with {expected_exp, breakdown, warnings}.
func (s *Server) MethodExpectation(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	multiplier, err := optionalBoolField(req, "multiplier")
	if err != nil {
		return nil, invalid(err)
	}
	items, err := structList(req, "slots")
	if err != nil {
		return nil, invalid(err)
	}
	slots := make([]encounter.Slot, 0, len(items))
	weights := make([]int, 0, len(items))
	for i, item := range items {
		sp, err := stringField(item, "species")
		if err != nil {
			return nil, invalid(fmt.Errorf("slots[%d]: %w", i, err))
		}
		lo, err := intField(item, "min_level")
		if err != nil {
			return nil, invalid(fmt.Errorf("slots[%d]: %w", i, err))
		}
		hi, err := intField(item, "max_level")
		if err != nil {
			return nil, invalid(fmt.Errorf("slots[%d]: %w", i, err))
		}
		w, err := intField(item, "weight")
		if err != nil {
			return nil, invalid(fmt.Errorf("slots[%d]: %w", i, err))
		}
		slots = append(slots, encounter.Slot{Species: sp, MinLevel: lo, MaxLevel: hi})
		weights = append(weights, w)
	}

	res, err := s.calc.MethodExpectation(slots, weights, multiplier)
	if err != nil {
		return nil, invalid(err)
	}

	breakdown := make([]interface{}, 0, len(res.Breakdown))
	for _, b := range res.Breakdown {
		breakdown = append(breakdown, map[string]interface{}{
			"slot_index":        b.SlotIndex,
			"species":           b.Species,
			"min_level":         b.MinLevel,
			"max_level":         b.MaxLevel,
			"probability":       b.Probability,
			"slot_expected_exp": b.SlotExpectedExp,
			"contribution":      b.Contribution,
		})
	}
	warnings := make([]interface{}, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, w.String())
	}
	return structpb.NewStruct(map[string]interface{}{
		"expected_exp": res.ExpectedExp,
		"breakdown":    breakdown,
		"warnings":     warnings,
	})
}

// Efficiency answers {expected_exp, encounter_rate, reference_max_rate?} with
// {efficiency}. The server's reference rate applies when none is given.
func (s *Server) Efficiency(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	exp, err := numberField(req, "expected_exp")
	if err != nil {
		return nil, invalid(err)
	}
	rate, err := intField(req, "encounter_rate")
	if err != nil {
		return nil, invalid(err)
	}
	refMax, err := optionalIntField(req, "reference_max_rate", s.referenceMax)
	if err != nil {
		return nil, invalid(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"efficiency": encounter.Efficiency(exp, rate, refMax),
	})
}
