package session

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"time"
)

const (
	sessionPrefix    = "sess_"
	checkpointPrefix = "chk_"

	sessionSuffixLen    = 6
	checkpointSuffixLen = 4

	base36 = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator mints session and checkpoint ids from a time source and a
// randomness source. The zero value is not usable; see NewIDGenerator.
type IDGenerator struct {
	now    Clock
	random io.Reader
}

// NewIDGenerator returns a generator reading time from now and suffix bytes
// from random. Nil arguments select time.Now and crypto/rand.
func NewIDGenerator(now Clock, random io.Reader) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	if random == nil {
		random = rand.Reader
	}
	return &IDGenerator{now: now, random: random}
}

// SessionID returns sess_<base36 unix millis>_<6 chars>.
func (g *IDGenerator) SessionID() string {
	return g.mint(sessionPrefix, sessionSuffixLen)
}

// CheckpointID returns chk_<base36 unix millis>_<4 chars>.
func (g *IDGenerator) CheckpointID() string {
	return g.mint(checkpointPrefix, checkpointSuffixLen)
}

func (g *IDGenerator) mint(prefix string, n int) string {
	stamp := strconv.FormatInt(g.now().UnixMilli(), 36)
	return prefix + stamp + "_" + g.suffix(n)
}

func (g *IDGenerator) suffix(n int) string {
	b := make([]byte, n)
	if _, err := io.ReadFull(g.random, b); err != nil {
		// The OS entropy source failing is not recoverable.
		panic(fmt.Errorf("reading id randomness: %w", err))
	}
	for i := range b {
		b[i] = base36[int(b[i])%len(base36)]
	}
	return string(b)
}
