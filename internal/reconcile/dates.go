package reconcile

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"devtomirror/internal/domain"
)

// Calendar range representable without overflow when converting epoch
// seconds (year 1 through year 9999).
const (
	minEpochSeconds = -62135596800
	maxEpochSeconds = 253402300799
)

var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseDate converts a heterogeneous date representation into a timestamp.
// Accepted inputs: ISO-8601 strings (a trailing "Z" means UTC; strings
// without zone information gain UTC), time.Time values, and numeric Unix
// epoch seconds. Anything unparsable, including numeric overflow, reports
// ok=false rather than failing.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return parseISO(v)
	case int:
		return fromEpoch(float64(v))
	case int64:
		return fromEpoch(float64(v))
	case float64:
		return fromEpoch(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	default:
		return time.Time{}, false
	}
}

func parseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func fromEpoch(seconds float64) (time.Time, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}, false
	}
	if seconds < minEpochSeconds || seconds > maxEpochSeconds {
		return time.Time{}, false
	}

	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC(), true
}

// IdentityKey derives the stable deduplication key for a post: a positive
// integer id wins, then the normalized link; posts with neither have no
// identity and are dropped during deduplication.
func IdentityKey(p domain.Post) (string, bool) {
	if id := postID(p); id > 0 {
		return "id:" + strconv.Itoa(id), true
	}

	link := p.Link
	if link == "" {
		link = p.URL
	}
	link = strings.TrimRight(link, "/")
	if link != "" {
		return "link:" + link, true
	}

	return "", false
}

func postID(p domain.Post) int {
	if p.ID > 0 {
		return p.ID
	}
	if p.APIData == nil {
		return 0
	}
	return numericID(p.APIData["id"])
}

func numericID(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

// ActivityTime reports the most recent timestamp found across the post's
// date-bearing fields, in priority order api_data.edited_at,
// api_data.published_at, edited_at, published_at, date.
func ActivityTime(p domain.Post) (time.Time, bool) {
	candidates := make([]any, 0, 5)
	if p.APIData != nil {
		candidates = append(candidates, p.APIData["edited_at"], p.APIData["published_at"])
	}
	candidates = append(candidates, p.EditedAt, p.PublishedAt, p.Date)

	var (
		best  time.Time
		found bool
	)
	for _, candidate := range candidates {
		t, ok := ParseDate(candidate)
		if !ok {
			continue
		}
		if !found || t.After(best) {
			best = t
			found = true
		}
	}

	return best, found
}

// SortKey returns the activity timestamp, or the zero time for dateless
// posts so they sort last without ever failing a comparison.
func SortKey(p domain.Post) time.Time {
	if t, ok := ActivityTime(p); ok {
		return t
	}
	return time.Time{}
}
