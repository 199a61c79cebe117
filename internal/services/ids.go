package services

import (
	"strconv"
	"time"
)

// isoFormat matches the original data files' ISO-8601 millisecond timestamps
const isoFormat = "2006-01-02T15:04:05.000Z"

func isoNow() string {
	return time.Now().UTC().Format(isoFormat)
}

// newTimestampID returns a millisecond-timestamp id, bumped past collisions
// so it stays unique within one document
func newTimestampID(taken func(id string) bool) string {
	ms := time.Now().UnixMilli()
	id := strconv.FormatInt(ms, 10)
	for taken(id) {
		ms++
		id = strconv.FormatInt(ms, 10)
	}
	return id
}
