package directory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"murmax-onboarding/internal/onboarding"
)

const dayLayout = "2006-01-02"

// Query narrows a directory listing. Zero values disable a criterion.
type Query struct {
	Role   onboarding.Role
	Search string
	From   time.Time
	To     time.Time
}

// ParseQuery builds a Query from user input. role may be empty or "All";
// from and to are calendar days (YYYY-MM-DD) and both ends are inclusive.
func ParseQuery(role, search, from, to string) (Query, error) {
	var q Query
	if role = strings.TrimSpace(role); role != "" && !strings.EqualFold(role, "all") {
		r, err := onboarding.ParseRole(role)
		if err != nil {
			return Query{}, err
		}
		q.Role = r
	}
	q.Search = strings.TrimSpace(search)

	if from = strings.TrimSpace(from); from != "" {
		day, err := time.Parse(dayLayout, from)
		if err != nil {
			return Query{}, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		q.From = day
	}
	if to = strings.TrimSpace(to); to != "" {
		day, err := time.Parse(dayLayout, to)
		if err != nil {
			return Query{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		q.To = day.Add(24*time.Hour - time.Millisecond)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return Query{}, fmt.Errorf("date range ends before it starts")
	}
	return q, nil
}

// Matches reports whether r satisfies every criterion of q.
func (q Query) Matches(r Record) bool {
	if q.Role != "" && r.Role != q.Role {
		return false
	}
	if needle := strings.ToLower(strings.TrimSpace(q.Search)); needle != "" {
		hay := strings.ToLower(strings.Join([]string{string(r.Role), r.Name, r.Company, r.Biz, r.ID}, " "))
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	if !q.From.IsZero() && r.CreatedAt < q.From.UnixMilli() {
		return false
	}
	if !q.To.IsZero() && r.CreatedAt > q.To.UnixMilli() {
		return false
	}
	return true
}

// Filter returns the records matching q, newest first. The input slice is
// not modified.
func Filter(records []Record, q Query) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// Find returns the record with id.
func Find(records []Record, id string) (Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}
