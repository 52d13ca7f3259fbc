package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMirrorDegradesWithoutRedis(t *testing.T) {
	// not initialized: announcements are no-ops and lookups say so
	AnnounceOnline("alice", "node-1", time.Minute)
	AnnounceOffline("alice", "node-1")

	_, online, err := Lookup("alice")
	assert.Error(t, err)
	assert.False(t, online)
}
