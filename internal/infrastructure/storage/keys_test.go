package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Aria":          "aria",
		"My Persona":    "my_persona",
		"a/b\\c":        "a_b_c",
		"  spaced  ":    "spaced",
		"Mixed CASE-1":  "mixed_case-1",
		"emoji🔥name":    "emoji_name",
		"café":          "café",
		"dots.are.fine": "dots.are.fine",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}

func TestAssetFilenameDeterministic(t *testing.T) {
	data := []byte("photo bytes")

	first := assetFilename(42, "Aria", data)
	second := assetFilename(42, "Aria", data)
	assert.Equal(t, first, second)
	assert.Regexp(t, `^photo_aria_[0-9a-f]{8}\.jpg$`, first)
}

func TestAssetFilenameVariesByInputs(t *testing.T) {
	data := []byte("photo bytes")

	base := assetFilename(42, "Aria", data)
	assert.NotEqual(t, base, assetFilename(42, "Aria", []byte("other bytes")))
	assert.NotEqual(t, base, assetFilename(43, "Aria", data))
}

func TestBucketAssetKey(t *testing.T) {
	key := bucketAssetKey(7, "Aria", []byte("x"))
	assert.Regexp(t, `^personas/7/photo_aria_[0-9a-f]{8}\.jpg$`, key)
}
