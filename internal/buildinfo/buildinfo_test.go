package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGetters(t *testing.T) {
	Set("0.3.0", "abc123", "2026-01-01", "ci")

	assert.Equal(t, "0.3.0", Version())
	assert.Equal(t, "abc123", Commit())
	assert.Equal(t, "2026-01-01", Date())
	assert.Equal(t, "ci", BuiltBy())
}

func TestEnrichFillsBuilder(t *testing.T) {
	Set("dev", "none", "unknown", "unknown")
	Enrich()

	assert.NotEqual(t, "unknown", BuiltBy())
}

func TestEnrichKeepsExplicitValues(t *testing.T) {
	Set("v1.0.0", "deadbeef", "2026-06-01", "goreleaser")
	Enrich()

	assert.Equal(t, "deadbeef", Commit())
	assert.Equal(t, "goreleaser", BuiltBy())
}

func TestSummary(t *testing.T) {
	Set("v1.2.3", "cafe", "today", "me")

	s := Summary()
	assert.Contains(t, s, "apollo v1.2.3")
	assert.Contains(t, s, "commit: cafe")
}
