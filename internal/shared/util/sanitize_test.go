package util

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName("  contracts/nda\\v2.pdf ")
	require.NoError(t, err)
	assert.Equal(t, "contracts_nda_v2.pdf", got)

	_, err = SanitizeFileName("../etc/passwd")
	assert.Error(t, err)
	_, err = SanitizeFileName("   ")
	assert.Error(t, err)
}

func TestSanitizeError(t *testing.T) {
	assert.Equal(t, "", SanitizeError(nil))
	assert.Equal(t, "dial tcp: refused retry", SanitizeError(errors.New("dial tcp: refused\nretry")))
	long := errors.New(strings.Repeat("x", 900))
	assert.Len(t, SanitizeError(long), 500)
}
