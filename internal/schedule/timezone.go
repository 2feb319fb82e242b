package schedule

import "time"

// LoadLocation resolves an IANA timezone identifier, falling back to UTC
// for empty or unknown names. Users self-report their timezone, so a bad
// value must degrade to UTC scheduling rather than break call planning.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
