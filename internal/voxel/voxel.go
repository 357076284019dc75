// Package voxel implements a point-indexed volumetric store with a fixed leaf
// resolution. Coordinates are quantised onto a cubic lattice; each lattice
// point holds at most one leaf, which carries an occupancy flag and a payload.
package voxel

import (
	"math"

	"github.com/OCAP2/spacetime/pkg/core"
)

// Key identifies a leaf on the lattice.
type Key struct {
	X, Y, Z int64
}

// Leaf is a single cell of the store.
type Leaf[T comparable] struct {
	Occupied bool
	Data     T
}

// Tree stores leaves keyed by their quantised coordinate.
// It is not safe for concurrent use; callers serialise access.
type Tree[T comparable] struct {
	resolution float64
	leaves     map[Key]*Leaf[T]
}

// New creates an empty store. The resolution is fixed for the lifetime of the store.
func New[T comparable](resolution float64) *Tree[T] {
	return &Tree[T]{
		resolution: resolution,
		leaves:     make(map[Key]*Leaf[T]),
	}
}

// Resolution returns the leaf edge length.
func (t *Tree[T]) Resolution() float64 {
	return t.resolution
}

// KeyOf quantises p to the nearest lattice point.
func (t *Tree[T]) KeyOf(p core.Position3D) Key {
	return Key{
		X: int64(math.Round(p.X / t.resolution)),
		Y: int64(math.Round(p.Y / t.resolution)),
		Z: int64(math.Round(p.Z / t.resolution)),
	}
}

// Coordinate returns the lattice point of k.
func (t *Tree[T]) Coordinate(k Key) core.Position3D {
	return core.Position3D{
		X: float64(k.X) * t.resolution,
		Y: float64(k.Y) * t.resolution,
		Z: float64(k.Z) * t.resolution,
	}
}

// Update creates the leaf at p if needed and sets its occupancy.
func (t *Tree[T]) Update(p core.Position3D, occupied bool) {
	t.leaf(t.KeyOf(p)).Occupied = occupied
}

// SetData attaches v to the leaf at p, replacing any previous payload.
func (t *Tree[T]) SetData(p core.Position3D, v T) {
	t.leaf(t.KeyOf(p)).Data = v
}

// Search returns the leaf at p.
func (t *Tree[T]) Search(p core.Position3D) (Leaf[T], bool) {
	l, ok := t.leaves[t.KeyOf(p)]
	if !ok {
		return Leaf[T]{}, false
	}
	return *l, true
}

// Delete removes the leaf at p. Deleting an absent leaf is a no-op.
func (t *Tree[T]) Delete(p core.Position3D) {
	delete(t.leaves, t.KeyOf(p))
}

// Traverse calls fn for every leaf until fn returns false.
// Visit order is unspecified. fn must not modify the tree.
func (t *Tree[T]) Traverse(fn func(p core.Position3D, l Leaf[T]) bool) {
	for k, l := range t.leaves {
		if !fn(t.Coordinate(k), *l) {
			return
		}
	}
}

// Len returns the number of leaves.
func (t *Tree[T]) Len() int {
	return len(t.leaves)
}

// Clear drops every leaf.
func (t *Tree[T]) Clear() {
	clear(t.leaves)
}

func (t *Tree[T]) leaf(k Key) *Leaf[T] {
	l, ok := t.leaves[k]
	if !ok {
		l = &Leaf[T]{}
		t.leaves[k] = l
	}
	return l
}
