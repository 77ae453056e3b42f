package valueobject

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Percentage is a value object for ownership stakes, expressed on a 0-100
// scale. It is immutable - all operations return new values.
type Percentage struct {
	value decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// NewPercentage creates a Percentage in the closed-open interval (0, 100]
func NewPercentage(value decimal.Decimal) (Percentage, error) {
	if value.LessThanOrEqual(decimal.Zero) || value.GreaterThan(hundred) {
		return Percentage{}, fmt.Errorf("percentage must be in (0, 100], got %s", value)
	}
	return Percentage{value: value}, nil
}

// NewPercentageFromString parses a percentage from its string form
func NewPercentageFromString(value string) (Percentage, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Percentage{}, fmt.Errorf("invalid percentage string: %w", err)
	}
	return NewPercentage(d)
}

// FullOwnership is the 100% stake held implicitly by a parent company
func FullOwnership() Percentage {
	return Percentage{value: hundred}
}

// Value returns the percentage on the 0-100 scale
func (p Percentage) Percent() decimal.Decimal {
	return p.value
}

// Fraction returns the percentage as a 0-1 ratio
func (p Percentage) Fraction() decimal.Decimal {
	return p.value.Div(hundred)
}

// Complement returns the outside (non-controlling) share, 100 - p
func (p Percentage) Complement() decimal.Decimal {
	return hundred.Sub(p.value)
}

// ComplementFraction returns the outside share as a 0-1 ratio
func (p Percentage) ComplementFraction() decimal.Decimal {
	return p.Complement().Div(hundred)
}

// IsFull returns true for a 100% stake
func (p Percentage) IsFull() bool {
	return p.value.Equal(hundred)
}

// ApplyTo scales an amount by the ownership fraction
func (p Percentage) ApplyTo(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.value).Div(hundred)
}

// Equals returns true when both percentages are numerically equal
func (p Percentage) Equals(other Percentage) bool {
	return p.value.Equal(other.value)
}

// String returns the string representation
func (p Percentage) String() string {
	return p.value.StringFixed(2) + "%"
}

// MarshalJSON implements json.Marshaler
func (p Percentage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.value.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Percentage) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid percentage: %w", err)
	}
	parsed, err := NewPercentage(d)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer for database storage
func (p Percentage) Value() (driver.Value, error) {
	return p.value.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (p *Percentage) Scan(value any) error {
	if value == nil {
		return fmt.Errorf("cannot scan nil into Percentage")
	}
	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Percentage", value)
	}
	d, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid percentage value: %w", err)
	}
	p.value = d
	return nil
}
