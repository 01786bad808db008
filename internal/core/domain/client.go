package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ClientIDPrefix is the prefix for connection client ids.
const ClientIDPrefix = "sbcl-"

// Client represents one live connection to the board.
//
// A Client exists from registration until disconnect or liveness
// timeout; it is owned exclusively by the connection registry.
type Client struct {
	// ID is the opaque unique identifier for this connection.
	// Format: sbcl-{ulid_lowercase}, 31 characters total.
	ID string `json:"id"`

	// ConnectedAt is the registration timestamp (Unix milliseconds).
	ConnectedAt int64 `json:"connected_at"`

	// LastSeenAt is the last liveness signal (Unix milliseconds).
	// Updated by the heartbeat so dead connections the transport
	// failed to report can be detected.
	LastSeenAt int64 `json:"last_seen_at"`
}

// GenerateClientID generates a new client id using ULID. The
// transport layer generates the id and hands it to the registry, so
// registration conflicts are the caller's bug, not a race.
func GenerateClientID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return ClientIDPrefix + strings.ToLower(id.String()), nil
}

// Touch updates the LastSeenAt timestamp.
func (c *Client) Touch() {
	c.LastSeenAt = time.Now().UnixMilli()
}

// Clone returns a copy of the client.
func (c *Client) Clone() *Client {
	clone := *c
	return &clone
}

// ConnectedAtTime returns ConnectedAt as time.Time.
func (c *Client) ConnectedAtTime() time.Time {
	return time.UnixMilli(c.ConnectedAt)
}

// LastSeenAtTime returns LastSeenAt as time.Time.
func (c *Client) LastSeenAtTime() time.Time {
	return time.UnixMilli(c.LastSeenAt)
}
