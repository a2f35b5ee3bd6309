package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits carried by every monetary
// amount. Amounts are rounded to this scale after every multiplication;
// display uses banker's rounding.
const MoneyScale = 2

// Money is an exact fixed-scale decimal amount. The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// NewMoney parses a decimal string such as "199.99" into a Money value.
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return Money{d: d.RoundBank(MoneyScale)}, nil
}

// MustMoney is NewMoney for literals known to be valid. Panics otherwise.
func MustMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromDecimal converts an arbitrary decimal to a Money value at scale.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d.RoundBank(MoneyScale)}
}

func ZeroMoney() Money {
	return Money{}
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

// MulInt multiplies by an integer scalar (quantity, day count). Exact, no
// rounding needed.
func (m Money) MulInt(n int32) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt32(n))}
}

// MulRate multiplies by a fractional rate (e.g. 0.18 for tax) and rounds to
// scale after the multiply.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{d: m.d.Mul(rate).RoundBank(MoneyScale)}
}

// Percent computes m × (pct/100), rounding to scale after the multiply,
// not before.
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money{d: m.d.Mul(pct).Div(decimal.NewFromInt(100)).RoundBank(MoneyScale)}
}

// Cmp returns -1, 0 or 1 comparing m against o.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// String renders the amount at scale with banker's rounding.
func (m Money) String() string {
	return m.d.StringFixedBank(MoneyScale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := NewMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value implements driver.Valuer; amounts are stored as NUMERIC text.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Money{}
		return nil
	case []byte:
		parsed, err := NewMoney(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case string:
		parsed, err := NewMoney(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case int64:
		*m = Money{d: decimal.NewFromInt(v)}
		return nil
	case float64:
		// lib/pq hands NUMERIC back as []byte; a float here means the column
		// type is wrong. Converting would reintroduce binary float drift.
		return fmt.Errorf("money column scanned as float64; use NUMERIC")
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
}
