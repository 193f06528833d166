package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidRating   = errors.New("invalid rating")
)

const (
	PriceMaxDigits     = 8
	PriceDecimalPlaces = 2
	MinRating          = 1
	MaxRating          = 5
)

// [D ][HH:]MM:]SS[.ffffff], the format durations are displayed in
var spanPattern = regexp.MustCompile(`^(?:(-?\d+) (?:days?, )?)?(?:(?:(\d+):)?(\d+):)?(\d+)(?:[.,](\d{1,6}))?$`)

// ParseSpan parses a duration written as "HH:MM:SS", "D HH:MM:SS", bare seconds,
// or Go duration syntax such as "1h30m".
func ParseSpan(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidDuration
	}

	if m := spanPattern.FindStringSubmatch(value); m != nil {
		parts := []spanPart{
			{m[1], 24 * time.Hour},
			{m[2], time.Hour},
			{m[3], time.Minute},
			{m[4], time.Second},
		}
		if m[5] != "" {
			parts = append(parts, spanPart{m[5] + strings.Repeat("0", 6-len(m[5])), time.Microsecond})
		}

		var total time.Duration
		for _, part := range parts {
			if part.digits == "" {
				continue
			}
			next, err := part.addTo(total)
			if err != nil {
				return 0, err
			}
			total = next
		}
		return total, nil
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	return 0, ErrInvalidDuration
}

type spanPart struct {
	digits string
	unit   time.Duration
}

// addTo returns total plus the part, failing instead of wrapping past the range of time.Duration.
func (p spanPart) addTo(total time.Duration) (time.Duration, error) {
	n, err := strconv.ParseInt(p.digits, 10, 64)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	limit := int64(math.MaxInt64 / p.unit)
	if n > limit || n < -limit {
		return 0, ErrInvalidDuration
	}
	part := time.Duration(n) * p.unit
	if (part > 0 && total > math.MaxInt64-part) || (part < 0 && total < math.MinInt64-part) {
		return 0, ErrInvalidDuration
	}
	return total + part, nil
}

// FormatSpan renders d as "HH:MM:SS", prefixed by "D " when it spans days.
func FormatSpan(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second

	out := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	if micros := d / time.Microsecond; micros > 0 {
		out += fmt.Sprintf(".%06d", micros)
	}
	if days > 0 {
		out = fmt.Sprintf("%d %s", days, out)
	}
	return sign + out
}

// ParsePrice accepts a non-negative amount with at most two decimal places
// that fits in numeric(8,2).
func ParsePrice(value string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, ErrInvalidPrice
	}
	if err := CheckPrice(price); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func CheckPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: must not be negative", ErrInvalidPrice)
	}
	if !price.Equal(price.Round(PriceDecimalPlaces)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidPrice, PriceDecimalPlaces)
	}
	limit := decimal.New(1, PriceMaxDigits-PriceDecimalPlaces)
	if price.GreaterThanOrEqual(limit) {
		return fmt.Errorf("%w: at most %d digits before the decimal point", ErrInvalidPrice, PriceMaxDigits-PriceDecimalPlaces)
	}
	return nil
}

// ParseRating accepts whole numbers from MinRating to MaxRating.
func ParseRating(value string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: enter a whole number", ErrInvalidRating)
	}
	if rating < MinRating || rating > MaxRating {
		return 0, fmt.Errorf("%w: must be between %d and %d", ErrInvalidRating, MinRating, MaxRating)
	}
	return rating, nil
}
