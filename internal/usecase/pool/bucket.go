package pool

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
)

const maxCountryLen = 30

// FindAgeBucket returns the bucket containing age.
func FindAgeBucket(age int) (domain.AgeBucket, bool) {
	for _, b := range domain.AgeBuckets {
		if b.Contains(age) {
			return b, true
		}
	}
	return domain.AgeBucket{}, false
}

// PoolKey derives the storage key "{country}_{gender}_{min}-{max}".
// Country and gender are reduced to ASCII letters so the separator never
// appears inside a component.
func PoolKey(country, gender string, bucket domain.AgeBucket) string {
	c := lettersOnly(country)
	if len(c) > maxCountryLen {
		c = c[:maxCountryLen]
	}
	if c == "" {
		c = domain.UnknownValue
	}
	g := lettersOnly(gender)
	if g == "" {
		g = domain.UnknownValue
	}
	return c + "_" + g + "_" + bucket.String()
}

// ParsePoolKey splits a key back into country, gender and age bucket.
func ParsePoolKey(key string) (country, gender, ageBucket string, err error) {
	parts := strings.Split(key, "_")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("%w: %q", domain.ErrInvalidPoolKey, key)
	}
	if _, err := parseAgeRange(parts[2]); err != nil {
		return "", "", "", fmt.Errorf("%w: %q", domain.ErrInvalidPoolKey, key)
	}
	return parts[0], parts[1], parts[2], nil
}

func parseAgeRange(s string) (domain.AgeBucket, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return domain.AgeBucket{}, fmt.Errorf("missing '-' in %q", s)
	}
	from, err := strconv.Atoi(lo)
	if err != nil {
		return domain.AgeBucket{}, err
	}
	to, err := strconv.Atoi(hi)
	if err != nil {
		return domain.AgeBucket{}, err
	}
	if from < 0 || to < from {
		return domain.AgeBucket{}, fmt.Errorf("bad range %q", s)
	}
	return domain.AgeBucket{Min: from, Max: to}, nil
}

func lettersOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			b.WriteByte(ch)
		}
	}
	return b.String()
}
