package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type thing struct{}

func TestNotNil(t *testing.T) {
	var nilPtr *thing
	var nilMap map[string]int
	var nilFunc func()

	require.Panics(t, func() { NotNil(nil) })
	require.Panics(t, func() { NotNil(nilPtr) })
	require.Panics(t, func() { NotNil(nilMap) })
	require.Panics(t, func() { NotNil(nilFunc) })

	require.NotPanics(t, func() { NotNil(&thing{}) })
	require.NotPanics(t, func() { NotNil(thing{}) })
	require.NotPanics(t, func() { NotNil(0) })
}

func TestNotEmptyStrAndPositive(t *testing.T) {
	require.Panics(t, func() { NotEmptyStr("") })
	require.NotPanics(t, func() { NotEmptyStr("x") })
	require.Panics(t, func() { Positive(0) })
	require.NotPanics(t, func() { Positive(1) })
}
