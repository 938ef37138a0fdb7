// Package linebuf stores line geometry as int16 vertex pairs and keeps a
// device-resident copy of it for drawing.
package linebuf

import (
	"fmt"
)

// Buffer is an append-only sequence of line vertices. Strips are separated by
// degenerate vertices so several strips can be drawn with a single call.
//
// The device buffer is created on the first Bind and owned by the Buffer until
// Close.
type Buffer struct {
	device Device
	coords []int16

	handle    Handle
	allocated bool
	stale     bool
}

// New returns an empty buffer that uploads to device.
func New(device Device) *Buffer {
	return &Buffer{device: device}
}

// AddCoordinate appends a vertex.
func (b *Buffer) AddCoordinate(x, y int16) {
	b.coords = append(b.coords, x, y)
	b.stale = true
}

// AddDegenerate repeats the last vertex, ending the current strip. On an empty
// buffer the origin is repeated.
func (b *Buffer) AddDegenerate() {
	var x, y int16
	if n := len(b.coords); n >= 2 {
		x, y = b.coords[n-2], b.coords[n-1]
	}
	b.AddCoordinate(x, y)
}

// Len returns the number of vertices.
func (b *Buffer) Len() int {
	return len(b.coords) / 2
}

// Coordinates returns the interleaved x, y host copy. It must not be modified.
func (b *Buffer) Coordinates() []int16 {
	return b.coords
}

// Bind makes the buffer the active vertex source, creating and uploading the
// device copy as needed.
func (b *Buffer) Bind() error {
	if !b.allocated {
		h, err := b.device.CreateBuffer()
		if err != nil {
			return fmt.Errorf("create vertex buffer: %w", err)
		}
		b.handle = h
		b.allocated = true
		b.stale = true
	}
	if b.stale {
		if err := b.device.Upload(b.handle, b.coords); err != nil {
			return fmt.Errorf("upload %d vertices: %w", b.Len(), err)
		}
		b.stale = false
	}
	if err := b.device.BindVertices(b.handle); err != nil {
		return fmt.Errorf("bind vertex buffer %d: %w", b.handle, err)
	}
	return nil
}

// Close releases the device copy. The host copy is kept; a later Bind
// allocates a new device buffer. If the device fails to delete the buffer the
// handle is kept and Close may be retried.
func (b *Buffer) Close() error {
	if !b.allocated {
		return nil
	}
	if err := b.device.DeleteBuffer(b.handle); err != nil {
		return fmt.Errorf("delete vertex buffer %d: %w", b.handle, err)
	}
	b.allocated = false
	b.handle = 0
	return nil
}
