package convlog

import "time"

// parseTimestamp parses an event's own timestamp. The log writes RFC 3339
// with sub-second precision; anything that fails to parse counts as absent.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// resolveTimestamps backfills messages that arrived without a timestamp.
// Policy, strictly in order: the next later message that has one (forward
// scan), then the file's modification time. The first message in a file is
// the common case for the forward fallback. When even the mtime is unusable
// the zero time stands and a warning is surfaced on the metadata, so the
// caller can see the file rather than us inventing a tie-break.
func resolveTimestamps(messages []Message, fileMtime time.Time, meta *Metadata) {
	for i := range messages {
		if !messages[i].Timestamp.IsZero() {
			continue
		}

		var fallback time.Time
		for j := i + 1; j < len(messages); j++ {
			if !messages[j].Timestamp.IsZero() {
				fallback = messages[j].Timestamp
				break
			}
		}

		if fallback.IsZero() {
			fallback = fileMtime
		}
		if fallback.IsZero() {
			meta.Warnings = append(meta.Warnings,
				"no timestamp available for message and file has no usable mtime")
		}
		messages[i].Timestamp = fallback
	}
}
