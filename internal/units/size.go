// Package units parses human-readable byte sizes.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidSize is returned for strings that are not a byte size.
var ErrInvalidSize = errors.New("invalid size")

var suffixes = []struct {
	suffix string
	mult   int64
}{
	// Longest first so "KiB" is not read as "B".
	{"KIB", 1 << 10}, {"MIB", 1 << 20}, {"GIB", 1 << 30}, {"TIB", 1 << 40},
	{"KB", 1 << 10}, {"MB", 1 << 20}, {"GB", 1 << 30}, {"TB", 1 << 40},
	{"K", 1 << 10}, {"M", 1 << 20}, {"G", 1 << 30}, {"T", 1 << 40},
	{"B", 1},
}

// ParseSize parses sizes such as "8192", "64K", "1.5M" or "2GiB". Suffixes
// are case-insensitive powers of 1024. Negative values are rejected.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidSize)
	}

	num, mult := s, int64(1)
	upper := strings.ToUpper(s)
	for _, sf := range suffixes {
		if strings.HasSuffix(upper, sf.suffix) {
			num = strings.TrimSpace(s[:len(s)-len(sf.suffix)])
			mult = sf.mult
			break
		}
	}
	if num == "" || strings.HasPrefix(num, "-") || strings.HasPrefix(num, "+") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	if n, err := strconv.ParseInt(num, 10, 64); err == nil {
		if n > math.MaxInt64/mult {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidSize, s)
		}
		return n * mult, nil
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	v := f * float64(mult)
	if v >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidSize, s)
	}
	return int64(v), nil
}
