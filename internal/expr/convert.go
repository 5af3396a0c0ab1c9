package expr

import (
	"encoding/json"
	"strconv"

	cty "github.com/zclconf/go-cty/cty"

	"github.com/flowave-io/exprinput/internal/encoding/jsonx"
)

// Render is the default string form of a value: strings as-is, numbers in
// their shortest decimal form, null as "", collections as JSON.
func Render(v cty.Value) string {
	if v.Type() == cty.NilType || v.IsNull() {
		return ""
	}
	if !v.IsWhollyKnown() {
		return "(known after evaluation)"
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Number:
		return numberText(v)
	case cty.Bool:
		return strconv.FormatBool(v.True())
	}
	goV, ok := convertCtyToGo(v)
	if !ok {
		return v.GoString()
	}
	s, err := jsonx.Marshal(goV)
	if err != nil {
		return v.GoString()
	}
	return string(s)
}

// Truthy reports whether v counts as a value worth delivering: null, "",
// zero, false and empty collections do not.
func Truthy(v cty.Value) bool {
	if v.Type() == cty.NilType || v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString() != ""
	case ty == cty.Number:
		return v.AsBigFloat().Sign() != 0
	case ty == cty.Bool:
		return v.True()
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType() || ty.IsMapType():
		return v.LengthInt() > 0
	case ty.IsObjectType():
		return len(ty.AttributeTypes()) > 0
	}
	return true
}

func numberText(v cty.Value) string {
	bf := v.AsBigFloat()
	if bf.IsInt() {
		i, _ := bf.Int(nil)
		return i.String()
	}
	f, _ := bf.Float64()
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func convertCtyToGo(v cty.Value) (any, bool) {
	if !v.IsWhollyKnown() {
		return nil, false
	}
	switch {
	case v.IsNull():
		return nil, true
	case v.Type().IsPrimitiveType():
		switch v.Type() {
		case cty.String:
			return v.AsString(), true
		case cty.Bool:
			return v.True(), true
		case cty.Number:
			return json.Number(numberText(v)), true
		}
	case v.Type().IsTupleType() || v.Type().IsListType() || v.Type().IsSetType():
		arr := []any{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			goV, ok := convertCtyToGo(ev)
			if !ok {
				return nil, false
			}
			arr = append(arr, goV)
		}
		return arr, true
	case v.Type().IsMapType() || v.Type().IsObjectType():
		m := map[string]any{}
		for k, ev := range v.AsValueMap() {
			goV, ok := convertCtyToGo(ev)
			if !ok {
				return nil, false
			}
			m[k] = goV
		}
		return m, true
	}
	return nil, false
}
