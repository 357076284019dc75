// pkg/core/position.go
package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Position3D is a point (or displacement) in index space.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromVec converts a gonum vector into a Position3D.
func FromVec(v r3.Vec) Position3D {
	return Position3D{X: v.X, Y: v.Y, Z: v.Z}
}

// Vec returns p as a gonum vector.
func (p Position3D) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Add returns p+q.
func (p Position3D) Add(q Position3D) Position3D {
	return FromVec(r3.Add(p.Vec(), q.Vec()))
}

// Sub returns p-q.
func (p Position3D) Sub(q Position3D) Position3D {
	return FromVec(r3.Sub(p.Vec(), q.Vec()))
}

// Norm returns the Euclidean length of p.
func (p Position3D) Norm() float64 {
	return r3.Norm(p.Vec())
}

// Distance returns the Euclidean distance between p and q.
func (p Position3D) Distance(q Position3D) float64 {
	return r3.Norm(r3.Sub(p.Vec(), q.Vec()))
}

// AngleTo returns the angle in radians between p and q, in [0, π].
// The angle is NaN when either vector has zero length.
func (p Position3D) AngleTo(q Position3D) float64 {
	if p.Norm() == 0 || q.Norm() == 0 {
		return math.NaN()
	}
	// clamp rounding error so parallel vectors yield exactly 0
	c := math.Max(-1, math.Min(1, r3.Cos(p.Vec(), q.Vec())))
	return math.Acos(c)
}

// Less orders positions lexicographically by X, then Y, then Z.
func (p Position3D) Less(q Position3D) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.Z < q.Z
}

func (p Position3D) String() string {
	return fmt.Sprintf("(%g %g %g)", p.X, p.Y, p.Z)
}
