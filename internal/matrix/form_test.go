package matrix_test

import (
	"errors"
	"testing"
	"time"

	"krankenhaus-matrix/internal/matrix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm_AddSubmitResetsToIdle(t *testing.T) {
	f := matrix.NewForm()
	var committed int64 = -1

	err := f.Submit(
		func() error { return nil },
		func(id int64) error { committed = id; return nil },
	)

	require.NoError(t, err)
	assert.Equal(t, int64(0), committed)
	assert.Equal(t, matrix.FormIdle, f.State())
}

func TestForm_EditPassesID(t *testing.T) {
	f := matrix.NewForm()
	require.NoError(t, f.Edit(42))
	assert.Equal(t, matrix.FormEditing, f.State())

	var committed int64
	require.NoError(t, f.Submit(func() error { return nil }, func(id int64) error { committed = id; return nil }))
	assert.Equal(t, int64(42), committed)
	assert.Equal(t, int64(0), f.EditingID())
}

func TestForm_ValidationErrorBlocksCommit(t *testing.T) {
	f := matrix.NewForm()
	require.NoError(t, f.Edit(7))

	calls := 0
	err := f.Submit(
		func() error { return matrix.ValidateHospital(matrix.Hospital{Name: "   "}) },
		func(int64) error { calls++; return nil },
	)

	var verrs matrix.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "name", verrs[0].Field)
	assert.Equal(t, 0, calls)
	assert.Equal(t, matrix.FormError, f.State())
	assert.Equal(t, int64(7), f.EditingID())

	// correcting the field clears the error
	err = f.Submit(
		func() error { return matrix.ValidateHospital(matrix.Hospital{Name: "Marien Hospital"}) },
		func(int64) error { calls++; return nil },
	)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, matrix.FormIdle, f.State())
	assert.Empty(t, f.Errors())
}

func TestForm_CommitErrorRestoresPriorState(t *testing.T) {
	f := matrix.NewForm()
	require.NoError(t, f.Edit(3))

	boom := errors.New("db down")
	err := f.Submit(func() error { return nil }, func(int64) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, matrix.FormEditing, f.State())
	assert.Equal(t, int64(3), f.EditingID())
}

func TestForm_BusyGate(t *testing.T) {
	f := matrix.NewForm()
	var inner error

	err := f.Submit(func() error { return nil }, func(int64) error {
		inner = f.Submit(func() error { return nil }, func(int64) error { return nil })
		assert.ErrorIs(t, f.Edit(1), matrix.ErrBusy)
		return nil
	})

	require.NoError(t, err)
	assert.ErrorIs(t, inner, matrix.ErrBusy)
}

func TestForm_CloseDiscards(t *testing.T) {
	f := matrix.NewForm()
	require.NoError(t, f.Edit(9))
	f.Close()
	assert.Equal(t, matrix.FormIdle, f.State())
	assert.Equal(t, int64(0), f.EditingID())
	assert.Equal(t, "idle", f.State().String())
}

func TestIDGenerator_Monotonic(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	g := matrix.NewIDGenerator(func() time.Time { return fixed })

	a, b, c := g.Next(), g.Next(), g.Next()
	assert.Equal(t, int64(1_700_000_000_000), a)
	assert.Equal(t, a+1, b)
	assert.Equal(t, b+1, c)

	g.Observe(1_800_000_000_000)
	assert.Equal(t, int64(1_800_000_000_001), g.Next())
}
