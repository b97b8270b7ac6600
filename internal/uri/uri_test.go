package uri_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnlang/gnls/internal/uri"
)

func TestPath_StripsFilePrefix(t *testing.T) {
	assert.Equal(t, "/w/BUILD.gn", uri.Path("file:///w/BUILD.gn"))
}

func TestPath_LeavesBarePathUnchanged(t *testing.T) {
	assert.Equal(t, "/w/BUILD.gn", uri.Path("/w/BUILD.gn"))
}

func TestFromPath_AddsFilePrefix(t *testing.T) {
	assert.Equal(t, "file:///w/BUILD.gn", uri.FromPath("/w/BUILD.gn"))
}

func TestFromPath_IdempotentOnAlreadyPrefixed(t *testing.T) {
	assert.Equal(t, "file:///w/BUILD.gn", uri.FromPath("file:///w/BUILD.gn"))
}

func TestPathAndFromPath_RoundTrip(t *testing.T) {
	u := uri.FromPath("/w/sub/dir/BUILD.gn")
	assert.Equal(t, "/w/sub/dir/BUILD.gn", uri.Path(u))
}
