package id

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// trackingLength is the number of characters kept from the UUID.
const trackingLength = 8

// trackingNamespace scopes tracking IDs so they never collide with other
// name-based UUIDs derived from the same input.
var trackingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("anonmail/tracking"))

// NewTrackingID returns a short, non-reversible reference for a relayed message.
// The seed (sender address or "anonymous") is mixed with the send time so the
// ID cannot be mapped back to a sender without knowing both.
func NewTrackingID(seed string, at time.Time) string {
	name := seed + strconv.FormatInt(at.UnixNano(), 10)
	return uuid.NewSHA1(trackingNamespace, []byte(name)).String()[:trackingLength]
}
