package weather

import "strings"

// LocationName derives a display name from an IANA timezone such as
// "America/New_York". It is a heuristic, not geocoding: the last path
// segment is used with underscores turned into spaces.
func LocationName(timezone string) string {
	name := timezone
	if i := strings.LastIndex(timezone, "/"); i >= 0 {
		name = timezone[i+1:]
	}
	return strings.ReplaceAll(name, "_", " ")
}
