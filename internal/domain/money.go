package domain

import "github.com/shopspring/decimal"

// Money renders a decimal as a JSON number with exactly two decimals
type Money decimal.Decimal

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

// UnmarshalJSON accepts both numbers and quoted strings
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}
