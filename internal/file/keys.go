package file

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// KeyFunc derives the object key for an upload.
type KeyFunc func(filename string, now time.Time) string

// UUIDKey returns a random UUIDv4. The key does not depend on the filename,
// so two uploads of the same name never collide.
func UUIDKey(string, time.Time) string {
	return uuid.NewString()
}

// TimestampKey returns "<unix-seconds>_<filename>". Two uploads of the same
// filename within one second get the same key and the later one wins.
func TimestampKey(filename string, now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10) + "_" + filename
}

// KeyFuncFor resolves a KEY_STRATEGY value.
func KeyFuncFor(strategy string) (KeyFunc, error) {
	switch strategy {
	case "", "uuid":
		return UUIDKey, nil
	case "timestamp":
		return TimestampKey, nil
	}
	return nil, fmt.Errorf("unknown key strategy %q", strategy)
}

// KeyFormat describes the keys a KEY_STRATEGY value produces, as reported by
// the info endpoint.
func KeyFormat(strategy string) string {
	if strategy == "timestamp" {
		return "<unix>_<filename>"
	}
	return "uuid"
}
