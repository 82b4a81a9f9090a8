package value

import (
	"fmt"

	"github.com/ericlagergren/decimal"
	"github.com/marcin-radoszewski/viroprof/internal/core"
)

// DecimalValue is a decimal128-shaped number: 34 digits of precision,
// half-even rounding, with an explicit scale kept for round-trip formatting
// (so "1.20" stays "1.20" rather than collapsing to "1.2").
type DecimalValue struct {
	Magnitude *decimal.Big
	Context   *decimal.Context
	Scale     int16
}

func NewDecimal(magnitude *decimal.Big, scale int16) *DecimalValue {
	ctx := decimal.Context{
		Precision:    34,
		RoundingMode: decimal.ToNearestEven,
	}
	return &DecimalValue{Magnitude: magnitude, Context: &ctx, Scale: scale}
}

func (d *DecimalValue) String() string {
	if d == nil || d.Magnitude == nil {
		return "0.0"
	}
	if f, ok := d.Magnitude.Float64(); ok {
		return fmt.Sprintf("%.*f", d.Scale, f)
	}
	return d.Magnitude.String()
}

func (d *DecimalValue) GetType() core.ValueType { return core.TypeDecimal }
func (d *DecimalValue) GetPayload() any         { return d }

func (d *DecimalValue) Equals(other core.Value) bool {
	od, ok := other.(*DecimalValue)
	if !ok {
		return false
	}
	if d.Magnitude == nil && od.Magnitude == nil {
		return true
	}
	if d.Magnitude == nil || od.Magnitude == nil {
		return false
	}
	return d.Magnitude.Cmp(od.Magnitude) == 0
}

func DecimalVal(magnitude *decimal.Big, scale int16) core.Value {
	return NewDecimal(magnitude, scale)
}

func AsDecimalValue(v core.Value) (*DecimalValue, bool) {
	dv, ok := v.(*DecimalValue)
	return dv, ok
}
