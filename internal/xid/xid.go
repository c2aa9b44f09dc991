package xid

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a prefixed ULID, e.g. "chk-01J8X2...". ULIDs sort by creation
// time, which keeps newest-first listings stable across processes.
func New(prefix string) string {
	now := time.Now().UTC()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, now.UnixNano())
	}
	return fmt.Sprintf("%s-%s", prefix, id.String())
}
