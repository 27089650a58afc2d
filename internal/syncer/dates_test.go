package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetDatePositiveOffset(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*60*60)

	got, err := TargetDate("2021-05-21T00:00:00Z", bangkok)
	require.NoError(t, err)
	assert.Equal(t, "2021-05-21T07:00:00+07:00", got)
}

func TestTargetDateNegativeOffset(t *testing.T) {
	newYork := time.FixedZone("EST", -5*60*60)

	got, err := TargetDate("2021-05-21T00:00:00Z", newYork)
	require.NoError(t, err)
	assert.Equal(t, "2021-05-20T19:00:00-05:00", got)
}

func TestTargetDateUTC(t *testing.T) {
	// Even a zero offset must be explicit and colonized, never a bare Z.
	got, err := TargetDate("2021-05-21T00:00:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2021-05-21T00:00:00+00:00", got)
}

func TestTargetDateMalformed(t *testing.T) {
	for _, input := range []string{"", "not a date", "2021-13-45T99:00:00Z"} {
		_, err := TargetDate(input, time.UTC)
		assert.Error(t, err, "input %q", input)
	}
}
