package domain

import "time"

type Chat struct {
	Messages []Message
}

// Filter returns a new Chat containing only messages within the given time range.
// nil values for from/to mean no lower/upper bound.
func (c *Chat) Filter(from, to *time.Time) *Chat {
	filtered := &Chat{}
	for _, msg := range c.Messages {
		if from != nil && msg.Timestamp.Before(*from) {
			continue
		}
		if to != nil && msg.Timestamp.After(*to) {
			continue
		}
		filtered.Messages = append(filtered.Messages, msg)
	}
	return filtered
}

// MonthKey identifies a calendar month. The zero value is the key for
// undated messages.
type MonthKey struct {
	Year  int
	Month time.Month
}

func MonthKeyOf(msg *Message) MonthKey {
	if msg.Undated() {
		return MonthKey{}
	}
	return MonthKey{Year: msg.Timestamp.Year(), Month: msg.Timestamp.Month()}
}

// Unknown reports whether this is the key for undated messages.
func (k MonthKey) Unknown() bool {
	return k == MonthKey{}
}

// MonthGroup is a contiguous run of messages sharing a MonthKey.
type MonthGroup struct {
	Key      MonthKey
	Messages []Message
}

// PartitionByMonth splits the ordered message sequence into contiguous
// month groups. Input order is trusted and preserved; no sorting happens,
// so an export with interleaved months produces one group per run. The
// concatenation of all groups always reproduces the input exactly.
func PartitionByMonth(messages []Message) []MonthGroup {
	var groups []MonthGroup
	for _, msg := range messages {
		key := MonthKeyOf(&msg)
		if len(groups) == 0 || groups[len(groups)-1].Key != key {
			groups = append(groups, MonthGroup{Key: key})
		}
		last := &groups[len(groups)-1]
		last.Messages = append(last.Messages, msg)
	}
	return groups
}

// CoalesceByKey merges groups sharing a MonthKey into one group per key,
// keeping first-seen key order and message order within each key. A
// chronological log passes through unchanged; an export with interleaved
// months ends up with every message in its month's single group instead
// of one group per run.
func CoalesceByKey(groups []MonthGroup) []MonthGroup {
	merged := make([]MonthGroup, 0, len(groups))
	seen := make(map[MonthKey]int, len(groups))

	for _, g := range groups {
		if i, ok := seen[g.Key]; ok {
			merged[i].Messages = append(merged[i].Messages, g.Messages...)
			continue
		}
		seen[g.Key] = len(merged)
		merged = append(merged, g)
	}
	return merged
}
