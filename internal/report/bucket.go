package report

import (
	"fmt"
	"sort"

	"registro/internal/core"
)

// Bucket is one time slot of a chart series. The three totals are
// non-negative magnitudes; the signed-to-magnitude conversion happens
// once, on entry into the bucket.
type Bucket struct {
	Key        string
	Income     core.Money
	Expense    core.Money
	Investment core.Money
}

// BucketKey derives the canonical key for a date at the given
// granularity. Keys are zero-padded and year-major, so lexicographic
// order is chronological order.
func BucketKey(d core.Date, g Granularity) string {
	switch g {
	case Daily:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
	case Monthly:
		return fmt.Sprintf("%04d-%02d", d.Year(), d.Month())
	default:
		return fmt.Sprintf("%04d", d.Year())
	}
}

// Filter returns the records whose date parses and falls within r,
// plus the count of records dropped for an unparseable date. Records
// are never mutated; the kept slice shares the input's backing values.
func Filter(records []core.Record, r Range) (kept []core.Record, invalid int) {
	for _, rec := range records {
		d, err := core.ParseDate(rec.Date)
		if err != nil {
			invalid++
			continue
		}
		if r.Contains(d) {
			kept = append(kept, rec)
		}
	}
	return kept, invalid
}

// FilterAndBucket selects the records inside r and groups them into
// buckets at the given granularity, ascending by key. Records with
// unparseable dates are dropped silently.
func FilterAndBucket(records []core.Record, r Range, g Granularity) []Bucket {
	kept, _ := Filter(records, r)
	return bucketize(kept, g)
}

func bucketize(records []core.Record, g Granularity) []Bucket {
	byKey := make(map[string]*Bucket)
	for _, rec := range records {
		d, err := core.ParseDate(rec.Date)
		if err != nil {
			continue
		}
		key := BucketKey(d, g)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Key: key}
			byKey[key] = b
		}
		addMagnitude(b, rec)
	}

	buckets := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

func addMagnitude(b *Bucket, rec core.Record) {
	m := abs(rec.Amount.Cents)
	switch rec.Movement {
	case core.Income:
		b.Income.Cents += m
	case core.Expense:
		b.Expense.Cents += m
	case core.Investment:
		b.Investment.Cents += m
	}
}

func abs(cents int64) int64 {
	if cents < 0 {
		return -cents
	}
	return cents
}
