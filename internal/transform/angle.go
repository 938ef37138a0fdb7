package transform

import "math"

const twoPi = 2 * math.Pi

// NormalizeAngle wraps an angle in radians into (-π, π].
//
// Angles within two turns of the range are wrapped by ±2π steps, which keeps
// the common single-wrap case bit for bit equal to repeated subtraction.
// Larger offsets are reduced with a modulo in constant time.
func NormalizeAngle(angle float64) float64 {
	if math.Abs(angle) > 4*math.Pi {
		angle = math.Mod(angle+math.Pi, twoPi)
		if angle <= 0 {
			angle += twoPi
		}
		angle -= math.Pi
	}
	// at most two iterations remain
	for angle > math.Pi {
		angle -= twoPi
	}
	for angle <= -math.Pi {
		angle += twoPi
	}
	return angle
}
