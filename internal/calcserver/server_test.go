package calcserver_test

import (
	"context"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/expcalc/internal/calcserver"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/growth"
	"github.com/cory-johannsen/expcalc/internal/game/species"
)

type fakeRecorder struct {
	mu        sync.Mutex
	codes     map[string][]string
	undefined int
}

func (f *fakeRecorder) RequestHandled(method, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = make(map[string][]string)
	}
	f.codes[method] = append(f.codes[method], code)
}

func (f *fakeRecorder) DivisionUndefined() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.undefined++
}

func (f *fakeRecorder) snapshot() (map[string][]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]string, len(f.codes))
	for k, v := range f.codes {
		out[k] = append([]string(nil), v...)
	}
	return out, f.undefined
}

// testGRPCServer starts an in-process gRPC server and returns a connected client.
func testGRPCServer(t *testing.T) (*calcserver.Client, *fakeRecorder) {
	t.Helper()

	calc, err := encounter.NewCalculator(species.Builtin())
	require.NoError(t, err)
	rec := &fakeRecorder{}
	svc := calcserver.NewServer(calc,
		calcserver.WithRecorder(rec),
		calcserver.WithLogger(zaptest.NewLogger(t)),
	)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(svc.UnaryInterceptor()))
	calcserver.RegisterCalculatorServer(grpcServer, svc)
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(func() { grpcServer.Stop() })

	conn, err := grpc.NewClient(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return calcserver.NewClient(conn), rec
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestGRPCService_CumulativeExp(t *testing.T) {
	client, _ := testGRPCServer(t)
	ctx := testContext(t)

	exp, err := client.CumulativeExp(ctx, growth.MediumFast, 10)
	require.NoError(t, err)
	assert.Equal(t, 1000, exp)

	exp, err = client.CumulativeExp(ctx, growth.MediumSlow, 16)
	require.NoError(t, err)
	assert.Equal(t, 2535, exp)
}

func TestGRPCService_CumulativeExp_InvalidArgument(t *testing.T) {
	client, rec := testGRPCServer(t)
	ctx := testContext(t)

	_, err := client.CumulativeExp(ctx, growth.MediumFast, 101)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	req, err := structpb.NewStruct(map[string]interface{}{"curve": "glacial", "level": 5})
	require.NoError(t, err)
	_, err = client.Call(ctx, calcserver.MethodCumulativeExp, req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	req, err = structpb.NewStruct(map[string]interface{}{"curve": "fast", "level": 5.5})
	require.NoError(t, err)
	_, err = client.Call(ctx, calcserver.MethodCumulativeExp, req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	got, _ := rec.snapshot()
	assert.Equal(t, []string{"InvalidArgument", "InvalidArgument", "InvalidArgument"},
		got[calcserver.FullMethod(calcserver.MethodCumulativeExp)])
}

func TestGRPCService_BattlesNeeded(t *testing.T) {
	client, _ := testGRPCServer(t)
	ctx := testContext(t)

	cases := []struct {
		need      int
		perBattle float64
		want      int
	}{
		{1000, 50, 20},
		{1001, 50, 21},
		{0, 50, 0},
		{2400, 50, 48},
	}
	for _, tc := range cases {
		got, err := client.BattlesNeeded(ctx, tc.need, tc.perBattle)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "need %d per %v", tc.need, tc.perBattle)
	}
}

func TestGRPCService_BattlesNeeded_DivisionUndefined(t *testing.T) {
	client, rec := testGRPCServer(t)
	ctx := testContext(t)

	_, err := client.BattlesNeeded(ctx, 100, 0)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	_, err = client.BattlesNeeded(ctx, 100, -3)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	_, err = client.BattlesNeeded(ctx, 100, math.Inf(1))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	_, err = client.BattlesNeeded(ctx, -1, 50)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, undefined := rec.snapshot()
	assert.Equal(t, 3, undefined)
}

func TestGRPCService_BattlesNeeded_Overflow(t *testing.T) {
	client, rec := testGRPCServer(t)
	ctx := testContext(t)

	_, err := client.BattlesNeeded(ctx, 100, 1e-300)
	assert.Equal(t, codes.OutOfRange, status.Code(err))

	got, undefined := rec.snapshot()
	assert.Equal(t, []string{"OutOfRange"}, got[calcserver.FullMethod(calcserver.MethodBattlesNeeded)])
	assert.Zero(t, undefined)
}

func TestGRPCService_MethodExpectation(t *testing.T) {
	client, _ := testGRPCServer(t)
	ctx := testContext(t)

	slots := []encounter.Slot{
		{Species: "SPECIES_WURMPLE", MinLevel: 2, MaxLevel: 3},
		{Species: "SPECIES_POOCHYENA", MinLevel: 2, MaxLevel: 3},
		{Species: "SPECIES_ZIGZAGOON", MinLevel: 2, MaxLevel: 3},
	}
	exp, err := client.MethodExpectation(ctx, slots, []int{20, 20, 10}, false)
	require.NoError(t, err)
	assert.InDelta(t, 19.4, exp, 1e-9)
}

func TestGRPCService_MethodExpectation_Breakdown(t *testing.T) {
	client, _ := testGRPCServer(t)
	ctx := testContext(t)

	req, err := structpb.NewStruct(map[string]interface{}{
		"slots": []interface{}{
			map[string]interface{}{"species": "SPECIES_MISSINGNO", "min_level": 5, "max_level": 5, "weight": 1},
		},
	})
	require.NoError(t, err)
	out, err := client.Call(ctx, calcserver.MethodMethodExpectation, req)
	require.NoError(t, err)

	m := out.AsMap()
	assert.InDelta(t, 35.0, m["expected_exp"].(float64), 1e-9)
	breakdown := m["breakdown"].([]interface{})
	require.Len(t, breakdown, 1)
	row := breakdown[0].(map[string]interface{})
	assert.Equal(t, "SPECIES_MISSINGNO", row["species"])
	assert.InDelta(t, 1.0, row["probability"].(float64), 1e-12)
	warnings := m["warnings"].([]interface{})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unknown species SPECIES_MISSINGNO")
}

func TestGRPCService_MethodExpectation_InvalidArgument(t *testing.T) {
	client, _ := testGRPCServer(t)
	ctx := testContext(t)

	_, err := client.MethodExpectation(ctx, nil, nil, false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.MethodExpectation(ctx,
		[]encounter.Slot{{Species: "SPECIES_ZUBAT", MinLevel: 9, MaxLevel: 3}}, []int{1}, false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.MethodExpectation(ctx,
		[]encounter.Slot{{Species: "SPECIES_ZUBAT", MinLevel: 3, MaxLevel: 9}}, []int{0}, false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	start := time.Now()
	_, err = client.MethodExpectation(ctx,
		[]encounter.Slot{{Species: "SPECIES_MUDKIP", MinLevel: 1, MaxLevel: math.MaxInt32}}, []int{1}, false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestGRPCService_Efficiency(t *testing.T) {
	client, _ := testGRPCServer(t)
	ctx := testContext(t)

	eff, err := client.Efficiency(ctx, 19.4, 20)
	require.NoError(t, err)
	assert.InDelta(t, 24.25, eff, 1e-9)

	eff, err = client.Efficiency(ctx, 19.4, 0)
	require.NoError(t, err)
	assert.Zero(t, eff)

	req, err := structpb.NewStruct(map[string]interface{}{
		"expected_exp": 48.45, "encounter_rate": 10, "reference_max_rate": 20,
	})
	require.NoError(t, err)
	out, err := client.Call(ctx, calcserver.MethodEfficiency, req)
	require.NoError(t, err)
	assert.InDelta(t, 24.225, out.AsMap()["efficiency"].(float64), 1e-9)
}

func TestProperty_BattlesNeeded_MatchesCeil(t *testing.T) {
	client, _ := testGRPCServer(t)
	ctx := testContext(t)

	rapid.Check(t, func(rt *rapid.T) {
		need := rapid.IntRange(0, 2_000_000).Draw(rt, "need")
		per := rapid.IntRange(1, 5000).Draw(rt, "per")
		got, err := client.BattlesNeeded(ctx, need, float64(per))
		if err != nil {
			rt.Fatalf("BattlesNeeded(%d, %d): %v", need, per, err)
		}
		want := (need + per - 1) / per
		if got != want {
			rt.Fatalf("BattlesNeeded(%d, %d) = %d, want %d", need, per, got, want)
		}
	})
}
