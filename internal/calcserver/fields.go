package calcserver

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"
)

func field(s *structpb.Struct, name string) (*structpb.Value, bool) {
	v, ok := s.GetFields()[name]
	if !ok || v == nil {
		return nil, false
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return nil, false
	}
	return v, true
}

func numberField(s *structpb.Struct, name string) (float64, error) {
	v, ok := field(s, name)
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return n.NumberValue, nil
}

func intField(s *structpb.Struct, name string) (int, error) {
	f, err := numberField(s, name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be an integer, got %v", name, f)
	}
	return int(f), nil
}

func optionalIntField(s *structpb.Struct, name string, def int) (int, error) {
	if _, ok := field(s, name); !ok {
		return def, nil
	}
	return intField(s, name)
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := field(s, name)
	if !ok {
		return "", fmt.Errorf("%s is required", name)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return str.StringValue, nil
}

func optionalStringField(s *structpb.Struct, name string) (string, error) {
	if _, ok := field(s, name); !ok {
		return "", nil
	}
	return stringField(s, name)
}

func optionalBoolField(s *structpb.Struct, name string) (bool, error) {
	v, ok := field(s, name)
	if !ok {
		return false, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return b.BoolValue, nil
}

func structList(s *structpb.Struct, name string) ([]*structpb.Struct, error) {
	v, ok := field(s, name)
	if !ok {
		return nil, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("%s must be a list", name)
	}
	out := make([]*structpb.Struct, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		sv, ok := item.GetKind().(*structpb.Value_StructValue)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object", name, i)
		}
		out = append(out, sv.StructValue)
	}
	return out, nil
}
