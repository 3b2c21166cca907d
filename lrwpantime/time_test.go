package lrwpantime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSub(t *testing.T) {
	a := Instant(1000)
	b := a.Add(Duration(500))
	assert.Equal(t, Instant(1500), b)
	assert.Equal(t, Duration(500), b.Sub(a))
	assert.Equal(t, Duration(-500), a.Sub(b))
}

func TestAddOverflowPanics(t *testing.T) {
	max := Instant(int64(^uint64(0) >> 1))
	require.Panics(t, func() {
		max.Add(Duration(1))
	})
}

func TestSaturatingAdd(t *testing.T) {
	max := Instant(int64(^uint64(0) >> 1))
	assert.Equal(t, max, max.SaturatingAdd(Duration(1)))
}

func TestDurationString(t *testing.T) {
	d := Seconds(1.5)
	assert.Equal(t, "1.500 seconds", d.String())
	assert.Equal(t, "-1.500 seconds", (-d).String())
}

func TestSymbols(t *testing.T) {
	d := Symbols(16, Duration(20))
	assert.Equal(t, Duration(320), d)
}
