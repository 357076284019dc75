package voxel

import (
	"testing"

	"github.com/OCAP2/spacetime/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tree := New[string](0.5)

	require.NotNil(t, tree)
	assert.Equal(t, 0.5, tree.Resolution())
	assert.Equal(t, 0, tree.Len())
}

func TestKeyOf_Quantises(t *testing.T) {
	tree := New[string](0.5)

	assert.Equal(t, Key{X: 2, Y: 0, Z: -2}, tree.KeyOf(core.Position3D{X: 1, Y: 0.2, Z: -1}))
	assert.Equal(t, tree.KeyOf(core.Position3D{X: 1}), tree.KeyOf(core.Position3D{X: 1.1}))
	assert.NotEqual(t, tree.KeyOf(core.Position3D{X: 1}), tree.KeyOf(core.Position3D{X: 1.3}))
}

func TestCoordinate_LatticePoint(t *testing.T) {
	tree := New[string](0.5)

	assert.Equal(t, core.Position3D{X: 1, Y: -0.5, Z: 0}, tree.Coordinate(Key{X: 2, Y: -1}))
	assert.Equal(t, core.Position3D{X: 1.5}, tree.Coordinate(tree.KeyOf(core.Position3D{X: 1.4})))
}

func TestUpdateAndSetData(t *testing.T) {
	tree := New[string](1)
	p := core.Position3D{X: 3, Y: 4, Z: 5}

	tree.Update(p, true)
	tree.SetData(p, "alice")

	leaf, ok := tree.Search(p)
	require.True(t, ok)
	assert.True(t, leaf.Occupied)
	assert.Equal(t, "alice", leaf.Data)
	assert.Equal(t, 1, tree.Len())

	tree.SetData(p, "bob")
	leaf, _ = tree.Search(p)
	assert.Equal(t, "bob", leaf.Data, "payload should be replaced")
	assert.Equal(t, 1, tree.Len())

	tree.Update(p, false)
	leaf, ok = tree.Search(p)
	require.True(t, ok, "marking free keeps the leaf")
	assert.False(t, leaf.Occupied)
}

func TestSearch_Missing(t *testing.T) {
	tree := New[int](1)

	leaf, ok := tree.Search(core.Position3D{X: 1})
	assert.False(t, ok)
	assert.Equal(t, Leaf[int]{}, leaf)
}

func TestDelete(t *testing.T) {
	tree := New[int](1)
	p := core.Position3D{X: 1}
	tree.Update(p, true)

	tree.Delete(p)
	_, ok := tree.Search(p)
	assert.False(t, ok)

	// absent leaf
	tree.Delete(core.Position3D{X: 42})
	assert.Equal(t, 0, tree.Len())
}

func TestTraverse(t *testing.T) {
	tree := New[int](1)
	for i := 0; i < 5; i++ {
		p := core.Position3D{X: float64(i)}
		tree.Update(p, true)
		tree.SetData(p, i*10)
	}

	seen := map[core.Position3D]int{}
	tree.Traverse(func(p core.Position3D, l Leaf[int]) bool {
		seen[p] = l.Data
		return true
	})
	assert.Len(t, seen, 5)
	assert.Equal(t, 30, seen[core.Position3D{X: 3}])

	visits := 0
	tree.Traverse(func(core.Position3D, Leaf[int]) bool {
		visits++
		return false
	})
	assert.Equal(t, 1, visits, "traversal should stop when fn returns false")
}

func TestClear(t *testing.T) {
	tree := New[int](1)
	tree.Update(core.Position3D{}, true)
	tree.Update(core.Position3D{X: 1}, true)

	tree.Clear()
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 1.0, tree.Resolution())
}
