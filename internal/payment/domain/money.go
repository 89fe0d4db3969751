package domain

import "github.com/shopspring/decimal"

const moneyScale = 2

// Money is an immutable amount normalized to two fractional digits using
// round-half-up. Normalization happens once at construction so every Money
// in the system carries the same scale.
type Money struct {
	amount decimal.Decimal
}

func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(moneyScale)}
}

func NewMoneyFromFloat(amount float64) Money {
	return NewMoney(decimal.NewFromFloat(amount))
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) IsNonPositive() bool {
	return m.amount.Cmp(decimal.Zero) <= 0
}

func (m Money) Add(other Money) Money {
	return NewMoney(m.amount.Add(other.amount))
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String renders with exactly two decimals, e.g. "10.00".
func (m Money) String() string {
	return m.amount.StringFixed(moneyScale)
}
