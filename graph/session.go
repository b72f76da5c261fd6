package graph

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewSessionID returns a fresh session identifier for callers that do not
// bring their own. IDs are ULIDs: lexicographically sortable by creation
// time, which keeps session listings in checkpoint stores chronological.
func NewSessionID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}
