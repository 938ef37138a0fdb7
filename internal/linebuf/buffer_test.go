package linebuf

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLen(t *testing.T) {
	b := New(NewHostDevice())
	require.Equal(t, 0, b.Len())

	b.AddCoordinate(1, 2)
	assert.Equal(t, 1, b.Len())
	b.AddCoordinate(-3, 4)
	assert.Equal(t, 2, b.Len())
	b.AddDegenerate()
	assert.Equal(t, 3, b.Len())
	b.AddCoordinate(5, 6)
	assert.Equal(t, 4, b.Len())
}

func TestAddDegenerateRepeatsLastCoordinate(t *testing.T) {
	b := New(NewHostDevice())
	b.AddDegenerate()
	b.AddCoordinate(10, -20)
	b.AddCoordinate(32767, -32768)
	b.AddDegenerate()

	assert.Equal(t, []int16{0, 0, 10, -20, 32767, -32768, 32767, -32768}, b.Coordinates())
}

func TestBindCreatesLazilyAndUploadsWhenChanged(t *testing.T) {
	d := NewHostDevice()
	b := New(d)
	b.AddCoordinate(1, 1)
	assert.Equal(t, 0, d.Live())

	require.NoError(t, b.Bind())
	assert.Equal(t, 1, d.Live())
	assert.Equal(t, 1, d.Uploads())
	got, ok := d.Bound()
	require.True(t, ok)
	assert.Equal(t, []int16{1, 1}, got)

	// unchanged: no upload, still one device buffer
	require.NoError(t, b.Bind())
	assert.Equal(t, 1, d.Live())
	assert.Equal(t, 1, d.Uploads())

	b.AddCoordinate(2, 3)
	require.NoError(t, b.Bind())
	assert.Equal(t, 2, d.Uploads())
	got, _ = d.Bound()
	assert.Equal(t, []int16{1, 1, 2, 3}, got)
}

func TestBindEmptyBuffer(t *testing.T) {
	d := NewHostDevice()
	b := New(d)
	require.NoError(t, b.Bind())
	got, ok := d.Bound()
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCloseReleasesDeviceBuffer(t *testing.T) {
	d := NewHostDevice()
	b := New(d)
	b.AddCoordinate(7, 8)
	require.NoError(t, b.Bind())
	require.NoError(t, b.Close())
	assert.Equal(t, 0, d.Live())
	_, ok := d.Bound()
	assert.False(t, ok)

	// closing twice is a no-op
	require.NoError(t, b.Close())

	// rebinding allocates and uploads again
	require.NoError(t, b.Bind())
	assert.Equal(t, 1, d.Live())
	assert.Equal(t, 2, d.Uploads())
}

// flakyDevice fails the first n deletes.
type flakyDevice struct {
	*HostDevice
	n int
}

var errBusy = errors.New("device busy")

func (d *flakyDevice) DeleteBuffer(h Handle) error {
	if d.n > 0 {
		d.n--
		return errBusy
	}
	return d.HostDevice.DeleteBuffer(h)
}

func TestCloseKeepsHandleWhenDeleteFails(t *testing.T) {
	d := &flakyDevice{HostDevice: NewHostDevice(), n: 1}
	b := New(d)
	b.AddCoordinate(1, 2)
	require.NoError(t, b.Bind())

	err := b.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, errBusy)
	assert.Equal(t, 1, d.Live())

	require.NoError(t, b.Close())
	assert.Equal(t, 0, d.Live())
}

func TestBindOnClosedDevice(t *testing.T) {
	d := NewHostDevice()
	require.NoError(t, d.Close())

	err := New(d).Bind()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClosedDevice))
}

func TestBuffersAreIndependent(t *testing.T) {
	d := NewHostDevice()
	a, b := New(d), New(d)
	a.AddCoordinate(1, 1)
	b.AddCoordinate(2, 2)
	require.NoError(t, a.Bind())
	require.NoError(t, b.Bind())
	assert.Equal(t, 2, d.Live())

	got, _ := d.Bound()
	assert.Equal(t, []int16{2, 2}, got)
	require.NoError(t, a.Bind())
	got, _ = d.Bound()
	assert.Equal(t, []int16{1, 1}, got)
}

type segment [4]float64

func drawAll(t *testing.T, d *HostDevice, m mgl64.Mat4) []segment {
	t.Helper()
	var segs []segment
	require.NoError(t, d.DrawLineStrip(m, func(x0, y0, x1, y1 float64) {
		segs = append(segs, segment{x0, y0, x1, y1})
	}))
	return segs
}

func TestDrawLineStripBreaksAtDegenerates(t *testing.T) {
	d := NewHostDevice()
	b := New(d)
	b.AddCoordinate(0, 0)
	b.AddCoordinate(10, 0)
	b.AddCoordinate(10, 10)
	b.AddDegenerate()
	b.AddCoordinate(20, 20)
	b.AddCoordinate(30, 20)
	require.NoError(t, b.Bind())

	segs := drawAll(t, d, mgl64.Ident4())
	assert.Equal(t, []segment{
		{0, 0, 10, 0},
		{10, 0, 10, 10},
		{20, 20, 30, 20},
	}, segs)
}

func TestDrawLineStripAppliesMatrix(t *testing.T) {
	d := NewHostDevice()
	b := New(d)
	b.AddCoordinate(0, 0)
	b.AddCoordinate(8, 16)
	require.NoError(t, b.Bind())

	m := mgl64.Translate3D(100, 50, 0).Mul4(mgl64.Scale3D(0.5, 0.25, 1))
	segs := drawAll(t, d, m)
	require.Len(t, segs, 1)
	assert.InDeltaSlice(t, []float64{100, 50, 104, 54}, segs[0][:], 1e-12)
}

func TestDrawLineStripWithoutBinding(t *testing.T) {
	d := NewHostDevice()
	err := d.DrawLineStrip(mgl64.Ident4(), func(_, _, _, _ float64) {})
	assert.ErrorIs(t, err, ErrNothingBound)
}

func TestDeviceRejectsUnknownHandle(t *testing.T) {
	d := NewHostDevice()
	assert.ErrorIs(t, d.Upload(42, nil), ErrUnknownHandle)
	assert.ErrorIs(t, d.BindVertices(42), ErrUnknownHandle)
	assert.ErrorIs(t, d.DeleteBuffer(42), ErrUnknownHandle)
}
