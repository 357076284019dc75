package timemap

import (
	"math"
	"time"

	"github.com/OCAP2/spacetime/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// TouchAngle is the widest angle between two directions still reported as Touching.
	TouchAngle = 5 * math.Pi / 180
	// NearAngle is the widest angle between two directions still reported as Near.
	NearAngle = 10 * math.Pi / 180
	// UnknownDistance is returned by Distance when a position cannot be resolved.
	UnknownDistance = -1.0
	// relationTolerance scales the space resolution into the alignment threshold.
	relationTolerance = 0.1
)

// Nearness classifies the angle between two directions seen from an observer.
type Nearness int

const (
	NearnessUnknown Nearness = iota - 1
	Touching
	Near
	Far
)

func (n Nearness) String() string {
	switch n {
	case Touching:
		return "touching"
	case Near:
		return "near"
	case Far:
		return "far"
	default:
		return "unknown"
	}
}

// Placement is the position of a target along one axis of an observer's frame.
type Placement int

const (
	PlacementUnknown Placement = iota
	Aligned
	Ahead
	Behind
	Left
	Right
	Above
	Below
)

func (p Placement) String() string {
	switch p {
	case Aligned:
		return "aligned"
	case Ahead:
		return "ahead"
	case Behind:
		return "behind"
	case Left:
		return "left"
	case Right:
		return "right"
	case Above:
		return "above"
	case Below:
		return "below"
	default:
		return "unknown"
	}
}

// Relation places a target relative to a reference in the observer's frame.
type Relation struct {
	Front    Placement // Ahead, Behind or Aligned
	Lateral  Placement // Left, Right or Aligned
	Vertical Placement // Above, Below or Aligned
}

// UnknownRelation is returned when the frame cannot be built.
var UnknownRelation = Relation{PlacementUnknown, PlacementUnknown, PlacementUnknown}

// Direction returns target minus observer at t.
func (ix *Index[E]) Direction(t time.Time, observer, target E) (core.Position3D, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	s := ix.window.find(t)
	if s == nil {
		return core.Position3D{}, false
	}
	o, ok := s.first(observer)
	if !ok {
		return core.Position3D{}, false
	}
	p, ok := s.first(target)
	if !ok {
		return core.Position3D{}, false
	}
	return p.Sub(o), true
}

// Distance returns the Euclidean distance between a and b at t, or
// UnknownDistance.
func (ix *Index[E]) Distance(t time.Time, a, b E) float64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	s := ix.window.find(t)
	if s == nil {
		return UnknownDistance
	}
	pa, ok := s.first(a)
	if !ok {
		return UnknownDistance
	}
	pb, ok := s.first(b)
	if !ok {
		return UnknownDistance
	}
	return pa.Distance(pb)
}

// AngularNearness compares the directions from observer to target and from
// observer to reference at t. A zero-length direction has no angle and
// reports Far.
func (ix *Index[E]) AngularNearness(t time.Time, observer, target, reference E) Nearness {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	o, p, r, ok := ix.resolve3(t, observer, target, reference)
	if !ok {
		return NearnessUnknown
	}

	angle := p.Sub(o).AngleTo(r.Sub(o))
	switch {
	case math.IsNaN(angle):
		return Far
	case angle <= TouchAngle:
		return Touching
	case angle <= NearAngle:
		return Near
	default:
		return Far
	}
}

// SpatialRelations places target relative to reference as seen by observer at
// t. The frame has its X axis along observer to reference with Z up; the
// reference sits on the X axis after rotation and the target is measured
// from it.
func (ix *Index[E]) SpatialRelations(t time.Time, observer, target, reference E) Relation {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	o, p, r, ok := ix.resolve3(t, observer, target, reference)
	if !ok {
		return UnknownRelation
	}

	eps := ix.spaceRes * relationTolerance
	toRef := r.Sub(o).Vec()
	if math.Abs(toRef.X) <= eps && math.Abs(toRef.Y) <= eps && math.Abs(toRef.Z) <= eps {
		return UnknownRelation
	}
	toTarget := p.Sub(o).Vec()

	yaw := r3.NewRotation(-math.Atan2(toRef.Y, toRef.X), r3.Vec{Z: 1})
	toRef, toTarget = yaw.Rotate(toRef), yaw.Rotate(toTarget)

	pitch := r3.NewRotation(math.Atan2(toRef.Z, toRef.X), r3.Vec{Y: 1})
	toRef, toTarget = pitch.Rotate(toRef), pitch.Rotate(toTarget)

	rel := r3.Sub(toTarget, r3.Vec{X: toRef.X})
	return Relation{
		Front:    classify(rel.X, eps, Behind, Ahead),
		Lateral:  classify(rel.Y, eps, Right, Left),
		Vertical: classify(rel.Z, eps, Above, Below),
	}
}

func (ix *Index[E]) resolve3(t time.Time, a, b, c E) (pa, pb, pc core.Position3D, ok bool) {
	s := ix.window.find(t)
	if s == nil {
		return
	}
	if pa, ok = s.first(a); !ok {
		return
	}
	if pb, ok = s.first(b); !ok {
		return
	}
	pc, ok = s.first(c)
	return
}

func classify(v, eps float64, positive, negative Placement) Placement {
	switch {
	case v > eps:
		return positive
	case v < -eps:
		return negative
	default:
		return Aligned
	}
}
