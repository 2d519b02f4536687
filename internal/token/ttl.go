package token

import "strconv"

// DefaultTTLSeconds is used when a TTL string cannot be understood.
const DefaultTTLSeconds = 900

// ParseTTL converts strings like "30s", "15m", "2h" or "7d" to seconds.
// Anything unrecognized falls back to DefaultTTLSeconds instead of failing;
// callers validate secrets for presence only, and TTLs get the same leniency.
func ParseTTL(s string) int64 {
	if len(s) < 2 {
		return DefaultTTLSeconds
	}
	n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil {
		return DefaultTTLSeconds
	}
	switch s[len(s)-1] {
	case 's':
		return n
	case 'm':
		return n * 60
	case 'h':
		return n * 3600
	case 'd':
		return n * 86400
	default:
		return DefaultTTLSeconds
	}
}
