package usecase

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bunnystock/leaddesk/internal/entity"
)

var errBadPageToken = errors.New("invalid page token")

// EncodePageToken renders a cursor as base64url("<createdAtMillis>|<id>").
func EncodePageToken(c *entity.Cursor) string {
	if c == nil {
		return ""
	}
	raw := strconv.FormatInt(c.CreatedAt.UnixMilli(), 10) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodePageToken is the inverse of EncodePageToken. Padded tokens are accepted too.
func DecodePageToken(token string) (*entity.Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil, errBadPageToken
	}

	millis, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, errBadPageToken
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return nil, errBadPageToken
	}

	return &entity.Cursor{CreatedAt: time.UnixMilli(ms).UTC(), ID: id}, nil
}

const dateOnly = "2006-01-02"

// ParseTimeParam accepts RFC3339, YYYY-MM-DD (midnight in loc) or epoch millis.
// isDate reports whether the value was a bare date.
func ParseTimeParam(v string, loc *time.Location) (t time.Time, isDate bool, err error) {
	v = strings.TrimSpace(v)
	if loc == nil {
		loc = time.UTC
	}

	if ms, perr := strconv.ParseInt(v, 10, 64); perr == nil {
		return time.UnixMilli(ms).UTC(), false, nil
	}
	if t, perr := time.ParseInLocation(dateOnly, v, loc); perr == nil {
		return t, true, nil
	}
	if t, perr := time.Parse(time.RFC3339Nano, v); perr == nil {
		return t, false, nil
	}
	return time.Time{}, false, errors.New("unrecognised time value " + strconv.Quote(v))
}

// timeRange turns the raw start/end parameters into an inclusive start and
// an exclusive end. A date-only end covers the whole of that day.
func timeRange(start, end string, loc *time.Location) (from, to *time.Time, err error) {
	if strings.TrimSpace(start) != "" {
		t, _, perr := ParseTimeParam(start, loc)
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if strings.TrimSpace(end) != "" {
		t, isDate, perr := ParseTimeParam(end, loc)
		if perr != nil {
			return nil, nil, perr
		}
		if isDate {
			t = t.AddDate(0, 0, 1)
		}
		to = &t
	}
	return from, to, nil
}

func clamp(v, def, lo, hi int) int {
	if v == 0 {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
