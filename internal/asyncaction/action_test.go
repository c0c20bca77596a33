package asyncaction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroValueIsUninitialized(t *testing.T) {
	var a Action[Unit]
	assert.True(t, a.IsUninitialized())
	assert.Equal(t, KindUninitialized, a.Kind())
	assert.False(t, a.IsTerminal())
	assert.NoError(t, a.Err())
}

func TestExactlyOneVariantActive(t *testing.T) {
	cases := []struct {
		name   string
		action Action[int]
		kind   Kind
	}{
		{"uninitialized", Uninitialized[int](), KindUninitialized},
		{"confirming", Confirming[int](), KindConfirming},
		{"loading", Loading[int](), KindLoading},
		{"success", Success(7), KindSuccess},
		{"failure", Failure[int](errors.New("boom")), KindFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := tc.action
			flags := []bool{a.IsUninitialized(), a.IsConfirming(), a.IsLoading(), a.IsSuccess(), a.IsFailure()}
			active := 0
			for _, f := range flags {
				if f {
					active++
				}
			}
			assert.Equal(t, 1, active)
			assert.Equal(t, tc.kind, a.Kind())
		})
	}
}

func TestLoadingCarriesNoFailure(t *testing.T) {
	a := Failure[Unit](errors.New("previous"))
	require.Error(t, a.Err())

	a = Loading[Unit]()
	assert.NoError(t, a.Err())
	assert.True(t, a.IsLoading())
}

func TestFailureNilErrorBecomesUnknown(t *testing.T) {
	a := Failure[Unit](nil)
	assert.ErrorIs(t, a.Err(), ErrUnknown)
}

func TestValueOnlyOnSuccess(t *testing.T) {
	v, ok := Success("done").Value()
	assert.True(t, ok)
	assert.Equal(t, "done", v)

	v, ok = Loading[string]().Value()
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestString(t *testing.T) {
	assert.Equal(t, "confirming", Confirming[Unit]().String())
	assert.Equal(t, "success(3)", Success(3).String())
	assert.Equal(t, "failure(boom)", Failure[int](errors.New("boom")).String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	ok := Run(ctx, func(context.Context) (int, error) { return 5, nil })
	v, _ := ok.Value()
	assert.Equal(t, 5, v)

	sentinel := errors.New("update failed")
	failed := Run(ctx, func(context.Context) (int, error) { return 0, sentinel })
	assert.ErrorIs(t, failed.Err(), sentinel)

	panicked := Run(ctx, func(context.Context) (int, error) { panic("kaboom") })
	require.True(t, panicked.IsFailure())
	assert.Contains(t, panicked.Err().Error(), "kaboom")
}
