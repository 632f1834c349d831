package property

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/evcraddock/fsbo/internal/apperr"
)

// Search limits.
const (
	DefaultSearchLimit   = 50
	MaxSearchLimit       = 200
	DefaultFeaturedLimit = 6
)

// AnyPropertyType is the sentinel type meaning "no type constraint".
const AnyPropertyType = "All"

// SearchOptions are the recognised search constraints. Zero values and nil
// pointers mean "no constraint", except Status, which defaults to active.
type SearchOptions struct {
	Location     string
	MinPrice     *int64
	MaxPrice     *int64
	PropertyType string
	MinBeds      *int
	MinBaths     *float64
	Status       Status
	PremiumOnly  bool
	Limit        int
}

// searchKeys lists the query parameters ParseSearchQuery accepts.
var searchKeys = map[string]bool{
	"location":     true,
	"minPrice":     true,
	"maxPrice":     true,
	"propertyType": true,
	"minBeds":      true,
	"minBaths":     true,
	"status":       true,
	"premiumOnly":  true,
	"limit":        true,
}

// ParseSearchQuery builds SearchOptions from URL query parameters.
// Either every parameter is well-formed or a validation error is returned;
// nothing is applied partially.
func ParseSearchQuery(q url.Values) (SearchOptions, error) {
	var unknown []string
	for key := range q {
		if !searchKeys[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return SearchOptions{}, apperr.Validation("unknown search parameter(s): %s", strings.Join(unknown, ", "))
	}

	opts := SearchOptions{
		Location:     strings.TrimSpace(q.Get("location")),
		PropertyType: strings.TrimSpace(q.Get("propertyType")),
		Limit:        DefaultSearchLimit,
	}
	if opts.PropertyType == AnyPropertyType {
		opts.PropertyType = ""
	}

	var err error
	if opts.MinPrice, err = parseInt64(q, "minPrice"); err != nil {
		return SearchOptions{}, err
	}
	if opts.MaxPrice, err = parseInt64(q, "maxPrice"); err != nil {
		return SearchOptions{}, err
	}
	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		return SearchOptions{}, apperr.Validation("minPrice must not exceed maxPrice")
	}

	minBeds, err := parseInt64(q, "minBeds")
	if err != nil {
		return SearchOptions{}, err
	}
	if minBeds != nil {
		beds := int(*minBeds)
		opts.MinBeds = &beds
	}

	if opts.MinBaths, err = parseFloat(q, "minBaths"); err != nil {
		return SearchOptions{}, err
	}

	if s := strings.TrimSpace(q.Get("status")); s != "" {
		status, err := ParseStatus(s)
		if err != nil {
			return SearchOptions{}, apperr.Validation("%v", err)
		}
		opts.Status = status
	}

	if s := strings.TrimSpace(q.Get("premiumOnly")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return SearchOptions{}, apperr.Validation("invalid premiumOnly %q: must be true or false", s)
		}
		opts.PremiumOnly = b
	}

	limit, err := ParseLimit(q.Get("limit"), DefaultSearchLimit)
	if err != nil {
		return SearchOptions{}, err
	}
	opts.Limit = limit

	return opts, nil
}

// ParseLimit parses a result limit, returning def when s is empty.
func ParseLimit(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxSearchLimit {
		return 0, apperr.Validation("invalid limit %q: must be an integer between 1 and %d", s, MaxSearchLimit)
	}
	return n, nil
}

// Normalize fills defaults and clamps the limit for options built in code.
func (o SearchOptions) Normalize() SearchOptions {
	if o.Status == "" {
		o.Status = StatusActive
	}
	if o.PropertyType == AnyPropertyType {
		o.PropertyType = ""
	}
	if o.Limit <= 0 {
		o.Limit = DefaultSearchLimit
	}
	if o.Limit > MaxSearchLimit {
		o.Limit = MaxSearchLimit
	}
	return o
}

func parseInt64(q url.Values, key string) (*int64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Accept whole-number floats such as "300000.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
			return nil, apperr.Validation("invalid %s %q: must be a whole number", key, s)
		}
		n = int64(f)
	}
	if n < 0 {
		return nil, apperr.Validation("invalid %s %q: must not be negative", key, s)
	}
	return &n, nil
}

func parseFloat(q url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, apperr.Validation("invalid %s %q: must be a number", key, s)
	}
	if f < 0 {
		return nil, apperr.Validation("invalid %s %q: must not be negative", key, s)
	}
	return &f, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
