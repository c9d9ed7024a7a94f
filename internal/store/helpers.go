package store

import "time"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

// expired treats unparsable timestamps as stale.
func expired(stamp string, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	parsed, err := time.Parse(timeLayout, stamp)
	if err != nil {
		return true
	}
	return time.Since(parsed) > maxAge
}
