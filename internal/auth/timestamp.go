package auth

import (
	"fmt"
	"strconv"
	"time"
)

// parseUnixTimestamp parses the X-Timestamp header, accepted as a decimal
// count of seconds since the Unix epoch.
func parseUnixTimestamp(raw string) (time.Time, error) {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("auth: invalid timestamp %q: %w", raw, err)
	}
	return time.Unix(secs, 0), nil
}
