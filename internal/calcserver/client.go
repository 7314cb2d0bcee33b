package calcserver

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/growth"
)

// Client is a typed client of expcalc.v1.Calculator.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a client connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with a raw request struct.
func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method string, req map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	return c.Call(ctx, method, in)
}

// CumulativeExp returns the total EXP to reach level on curve.
func (c *Client) CumulativeExp(ctx context.Context, curve growth.Curve, level int) (int, error) {
	out, err := c.call(ctx, MethodCumulativeExp, map[string]interface{}{
		"curve": curve.String(),
		"level": level,
	})
	if err != nil {
		return 0, err
	}
	return intField(out, "exp")
}

// BattlesNeeded returns the battle count to gain expNeeded at perBattle each.
func (c *Client) BattlesNeeded(ctx context.Context, expNeeded int, perBattle float64) (int, error) {
	out, err := c.call(ctx, MethodBattlesNeeded, map[string]interface{}{
		"exp_needed": expNeeded,
		"per_battle": perBattle,
	})
	if err != nil {
		return 0, err
	}
	return intField(out, "battles")
}

// MethodExpectation returns the expected EXP per encounter of slots.
//
// Precondition: len(weights) == len(slots).
func (c *Client) MethodExpectation(ctx context.Context, slots []encounter.Slot, weights []int, multiplier bool) (float64, error) {
	if len(weights) != len(slots) {
		return 0, fmt.Errorf("%w: %d slots, %d weights", encounter.ErrWeightMismatch, len(slots), len(weights))
	}
	items := make([]interface{}, 0, len(slots))
	for i, s := range slots {
		items = append(items, map[string]interface{}{
			"species":   s.Species,
			"min_level": s.MinLevel,
			"max_level": s.MaxLevel,
			"weight":    weights[i],
		})
	}
	out, err := c.call(ctx, MethodMethodExpectation, map[string]interface{}{
		"multiplier": multiplier,
		"slots":      items,
	})
	if err != nil {
		return 0, err
	}
	return numberField(out, "expected_exp")
}

// Efficiency scores expectedExp at triggerRate against the server's reference
// rate.
func (c *Client) Efficiency(ctx context.Context, expectedExp float64, triggerRate int) (float64, error) {
	out, err := c.call(ctx, MethodEfficiency, map[string]interface{}{
		"expected_exp":   expectedExp,
		"encounter_rate": triggerRate,
	})
	if err != nil {
		return 0, err
	}
	return numberField(out, "efficiency")
}

// Ranking is one row of a RankLocations response.
type Ranking struct {
	LocationID    string
	Location      string
	Version       string
	Method        string
	ExpectedExp   float64
	EncounterRate int
	Efficiency    float64
}

// RankLocations returns the top rows of the server's dataset ranking for
// method; an empty method ranks every method together.
func (c *Client) RankLocations(ctx context.Context, method string, top int, multiplier bool) ([]Ranking, error) {
	req := map[string]interface{}{"top": top, "multiplier": multiplier}
	if method != "" {
		req["method"] = method
	}
	out, err := c.call(ctx, MethodRankLocations, req)
	if err != nil {
		return nil, err
	}
	items, err := structList(out, "rankings")
	if err != nil {
		return nil, err
	}
	rows := make([]Ranking, 0, len(items))
	for i, item := range items {
		var r Ranking
		if r.LocationID, err = stringField(item, "location_id"); err != nil {
			return nil, fmt.Errorf("rankings[%d]: %w", i, err)
		}
		if r.Location, err = stringField(item, "location"); err != nil {
			return nil, fmt.Errorf("rankings[%d]: %w", i, err)
		}
		if r.Version, err = stringField(item, "version"); err != nil {
			return nil, fmt.Errorf("rankings[%d]: %w", i, err)
		}
		if r.Method, err = stringField(item, "method"); err != nil {
			return nil, fmt.Errorf("rankings[%d]: %w", i, err)
		}
		if r.ExpectedExp, err = numberField(item, "expected_exp"); err != nil {
			return nil, fmt.Errorf("rankings[%d]: %w", i, err)
		}
		if r.EncounterRate, err = intField(item, "encounter_rate"); err != nil {
			return nil, fmt.Errorf("rankings[%d]: %w", i, err)
		}
		if r.Efficiency, err = numberField(item, "efficiency"); err != nil {
			return nil, fmt.Errorf("rankings[%d]: %w", i, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}
