package linebuf

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrUnknownHandle = errors.New("unknown buffer handle")
	ErrClosedDevice  = errors.New("device is closed")
	ErrNothingBound  = errors.New("no vertex buffer bound")
)

// Handle names a buffer on a Device.
type Handle uint32

// Device owns vertex buffers on the rendering backend. Calls must come from
// the goroutine that owns the backend.
type Device interface {
	CreateBuffer() (Handle, error)
	Upload(h Handle, coords []int16) error
	BindVertices(h Handle) error
	DeleteBuffer(h Handle) error
}

// HostDevice keeps buffers in host memory and rasterizes line strips through
// a caller supplied segment plotter. It stands in for a GPU in the terminal
// renderer and in tests.
type HostDevice struct {
	next    Handle
	buffers map[Handle][]int16
	bound   Handle
	closed  bool

	uploads int
}

// NewHostDevice returns an empty device.
func NewHostDevice() *HostDevice {
	return &HostDevice{buffers: make(map[Handle][]int16)}
}

func (d *HostDevice) CreateBuffer() (Handle, error) {
	if d.closed {
		return 0, ErrClosedDevice
	}
	d.next++
	d.buffers[d.next] = nil
	return d.next, nil
}

func (d *HostDevice) Upload(h Handle, coords []int16) error {
	if d.closed {
		return ErrClosedDevice
	}
	if _, ok := d.buffers[h]; !ok {
		return ErrUnknownHandle
	}
	d.buffers[h] = append(d.buffers[h][:0], coords...)
	d.uploads++
	return nil
}

func (d *HostDevice) BindVertices(h Handle) error {
	if d.closed {
		return ErrClosedDevice
	}
	if _, ok := d.buffers[h]; !ok {
		return ErrUnknownHandle
	}
	d.bound = h
	return nil
}

func (d *HostDevice) DeleteBuffer(h Handle) error {
	if d.closed {
		return ErrClosedDevice
	}
	if _, ok := d.buffers[h]; !ok {
		return ErrUnknownHandle
	}
	delete(d.buffers, h)
	if d.bound == h {
		d.bound = 0
	}
	return nil
}

// Live returns the number of allocated buffers.
func (d *HostDevice) Live() int { return len(d.buffers) }

// Uploads returns the number of uploads performed so far.
func (d *HostDevice) Uploads() int { return d.uploads }

// Bound returns the active vertex source.
func (d *HostDevice) Bound() ([]int16, bool) {
	if d.bound == 0 {
		return nil, false
	}
	v, ok := d.buffers[d.bound]
	return v, ok
}

// Close frees every buffer. Further calls fail with ErrClosedDevice.
func (d *HostDevice) Close() error {
	d.buffers = nil
	d.bound = 0
	d.closed = true
	return nil
}

// DrawLineStrip transforms the bound vertices by m and passes each visible
// segment to plot in screen coordinates. A repeated vertex ends the strip, so
// the segment leaving it is skipped.
func (d *HostDevice) DrawLineStrip(m mgl64.Mat4, plot func(x0, y0, x1, y1 float64)) error {
	if d.closed {
		return ErrClosedDevice
	}
	v, ok := d.Bound()
	if !ok {
		return ErrNothingBound
	}
	n := len(v) / 2
	if n < 2 {
		return nil
	}

	prev := mgl64.TransformCoordinate(mgl64.Vec3{float64(v[0]), float64(v[1]), 0}, m)
	broken := false
	for i := 1; i < n; i++ {
		x, y := v[2*i], v[2*i+1]
		cur := mgl64.TransformCoordinate(mgl64.Vec3{float64(x), float64(y), 0}, m)
		repeated := x == v[2*i-2] && y == v[2*i-1]
		if !repeated && !broken {
			plot(prev.X(), prev.Y(), cur.X(), cur.Y())
		}
		broken = repeated
		prev = cur
	}
	return nil
}
