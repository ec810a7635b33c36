package indicator

import (
	"math"
	"strconv"
)

// Value is an indicator reading. It is undefined (Valid == false) while the
// indicator's window is still warming up.
type Value struct {
	V     float64
	Valid bool
}

// Of wraps a computed number. NaN and infinities become undefined.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{V: v, Valid: true}
}

// GT reports v > x. Undefined values never satisfy a comparison.
func (v Value) GT(x float64) bool { return v.Valid && v.V > x }

// GE reports v >= x.
func (v Value) GE(x float64) bool { return v.Valid && v.V >= x }

// LT reports v < x.
func (v Value) LT(x float64) bool { return v.Valid && v.V < x }

// LE reports v <= x.
func (v Value) LE(x float64) bool { return v.Valid && v.V <= x }

// Or returns the reading, or def when undefined.
func (v Value) Or(def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.V
}

func (v Value) String() string {
	if !v.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(v.V, 'f', 2, 64)
}

// MarshalJSON encodes undefined readings as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.V, 'f', -1, 64), nil
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*v = Of(f)
	return nil
}
