package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	v, c, b := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = v, c, b })

	Version, Commit, BuildDate = "v1.2.0", "abc123", "2026-10-01"
	assert.Equal(t, "v1.2.0 (commit: abc123, built: 2026-10-01)", String())
	assert.True(t, IsRelease())

	Version = "dev"
	assert.False(t, IsRelease())
}
