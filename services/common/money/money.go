// Package money holds the integer-cents arithmetic shared by checkout and
// order materialization. Prices enter as decimals and leave as cents; no float
// ever touches an amount.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Per-line and per-session limits of the payment processor.
const (
	MaxQuantity  = 999_999
	MaxUnitCents = 99_999_999
	MaxLines     = 100
)

// ErrOverflow is returned when a total does not fit in int64 cents.
var ErrOverflow = errors.New("total exceeds the representable amount")

var (
	hundred      = decimal.NewFromInt(100)
	maxCents     = decimal.NewFromInt(math.MaxInt64)
	maxUnitPrice = decimal.New(MaxUnitCents, -2)
)

// ToCents converts a price in major units to cents, rounding half away from zero.
func ToCents(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}

// FromCents converts cents back to a two-place decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Line is one priced line of a cart or order.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// CheckLine rejects a line the processor would refuse: quantity outside
// [1, MaxQuantity] or a unit price outside [0, MaxUnitCents] cents.
func CheckLine(l Line) error {
	if l.Quantity <= 0 || l.Quantity > MaxQuantity {
		return fmt.Errorf("quantity %d out of range [1, %d]", l.Quantity, MaxQuantity)
	}
	if l.UnitPrice.IsNegative() || l.UnitPrice.GreaterThan(maxUnitPrice) {
		return fmt.Errorf("unit price %s out of range [0, %s]", l.UnitPrice, maxUnitPrice.StringFixed(2))
	}
	return nil
}

// Total returns sum(round(unit_price*100) * quantity) over lines. The sum is
// kept in decimal and ErrOverflow is returned if it leaves int64.
func Total(lines []Line) (int64, error) {
	sum := decimal.Zero
	for _, l := range lines {
		cents := l.UnitPrice.Mul(hundred).Round(0)
		sum = sum.Add(cents.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if sum.GreaterThan(maxCents) || sum.LessThan(maxCents.Neg()) {
		return 0, ErrOverflow
	}
	return sum.IntPart(), nil
}

// Split is how a charge is divided between the platform and the tenant.
// FeeCents + DestinationCents == TotalCents always holds.
type Split struct {
	TotalCents       int64
	FeeCents         int64
	DestinationCents int64
}

// SplitFee deducts round(total*rate) from total.
func SplitFee(totalCents int64, rate decimal.Decimal) Split {
	fee := decimal.NewFromInt(totalCents).Mul(rate).Round(0).IntPart()
	return Split{
		TotalCents:       totalCents,
		FeeCents:         fee,
		DestinationCents: totalCents - fee,
	}
}

// ParseRate parses a fee rate such as "0.03" and requires 0 <= rate < 1.
func ParseRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid fee rate %q: %w", s, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("fee rate %s out of range [0, 1)", rate)
	}
	return rate, nil
}
