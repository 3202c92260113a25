package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD"
	CAD Currency = "CAD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	AUD Currency = "AUD"
	JPY Currency = "JPY"
)

// zeroDecimalCurrencies have no minor unit; the upstream sends whole units for them
var zeroDecimalCurrencies = map[Currency]bool{
	JPY:   true,
	"KRW": true,
	"VND": true,
	"CLP": true,
	"ISK": true,
}

// Exponent returns the number of minor-unit digits of the currency
func (c Currency) Exponent() int32 {
	if zeroDecimalCurrencies[c] {
		return 0
	}
	return 2
}

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	currency = Currency(strings.ToUpper(strings.TrimSpace(string(currency))))
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("invalid currency code: %s", currency)
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromMinor creates Money from an amount in minor units (cents for USD).
// This is the representation the upstream catalog API uses.
func NewMoneyFromMinor(minor int64, currency Currency) (Money, error) {
	return NewMoney(decimal.New(minor, -currency.Exponent()), currency)
}

// MustMoneyFromMinor is NewMoneyFromMinor for literals known to be valid
func MustMoneyFromMinor(minor int64, currency Currency) Money {
	m, err := NewMoneyFromMinor(minor, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Minor returns the amount in minor units, rounded half away from zero
func (m Money) Minor() int64 {
	return m.amount.Shift(m.currency.Exponent()).Round(0).IntPart()
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// SameCurrency reports whether both values are denominated in the same currency
func (m Money) SameCurrency(other Money) bool {
	return m.currency == other.currency
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.Exponent()), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Minor    int64    `json:"minor"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(m.currency.Exponent()),
		Minor:    m.Minor(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	parsed, err := NewMoney(amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
