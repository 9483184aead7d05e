package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// anonymousMarker is used when a request carries no session token, collapsing
// all unauthenticated traffic for one client into a shared bucket.
const anonymousMarker = "anonymous"

// tokenPrefixLen bounds how much of a session token leaks into bucket keys.
const tokenPrefixLen = 8

// Key is a value object encapsulating rate limit bucket key construction.
// Buckets are scoped per tier and per client: the client address and agent
// string are hashed so raw values never appear in the store, and a short
// token prefix separates concurrent sessions from the same client.
type Key struct {
	tier     Tier
	ip       string
	agent    string
	tokenTag string
}

// NewKey derives a bucket key from the request's client context. An empty
// sessionToken maps to the shared anonymous segment.
func NewKey(tier Tier, clientIP, userAgent, sessionToken string) Key {
	tag := anonymousMarker
	if sessionToken != "" {
		if len(sessionToken) > tokenPrefixLen {
			sessionToken = sessionToken[:tokenPrefixLen]
		}
		tag = sessionToken
	}
	return Key{
		tier:     tier,
		ip:       hashSegment(clientIP),
		agent:    hashSegment(userAgent),
		tokenTag: tag,
	}
}

// String returns the formatted key for storage lookup.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", k.tier, k.ip, k.agent, k.tokenTag)
}

// hashSegment digests a client-supplied value so arbitrary input cannot
// collide with or manipulate adjacent buckets. 16 hex chars keep keys short.
func hashSegment(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
