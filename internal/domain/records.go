package domain

import (
	"strconv"
	"time"
)

// EntryFromRecord maps a weight_entries row. The display date is rendered in loc.
func EntryFromRecord(r Record, loc *time.Location) WeightEntry {
	ts := asTime(r["date"])
	if loc == nil {
		loc = time.Local
	}
	e := WeightEntry{
		ID:        asString(r["id"]),
		Weight:    asFloat(r["weight"]),
		Timestamp: ts,
		Diff:      asFloat(r["diff"]),
		Trend:     ParseTrend(asString(r["trend"])),
	}
	if !ts.IsZero() {
		e.Date = ts.In(loc).Format(DisplayLayout)
	}
	return e
}

// Record maps the entry to a weight_entries row without its id.
func (e WeightEntry) Record() Record {
	return Record{
		"weight": e.Weight,
		"date":   e.Timestamp.UTC(),
		"diff":   e.Diff,
		"trend":  string(e.Trend),
	}
}

// ProfileFromRecord maps a profiles row.
func ProfileFromRecord(r Record) UserProfile {
	return UserProfile{
		Name:         asString(r["name"]),
		Gender:       asString(r["gender"]),
		Age:          int(asInt(r["age"])),
		Height:       int(asInt(r["height"])),
		StartWeight:  asFloat(r["start_weight"]),
		TargetWeight: asFloat(r["target_weight"]),
		UpdatedAt:    asTime(r["updated_at"]),
	}
}

// Record maps the profile to a profiles row without its id.
func (p UserProfile) Record() Record {
	return Record{
		"name":          p.Name,
		"gender":        p.Gender,
		"age":           int64(p.Age),
		"height":        int64(p.Height),
		"start_weight":  p.StartWeight,
		"target_weight": p.TargetWeight,
		"updated_at":    p.UpdatedAt.UTC(),
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	}
	return ""
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(t), 64)
		return f
	}
	return 0
}

func asInt(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case int64:
		return time.UnixMilli(t).UTC()
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts
		}
	}
	return time.Time{}
}
