package treepath

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentIsSeparatorFree(t *testing.T) {
	for i := 0; i < 50; i++ {
		seg := Segment(uuid.New())
		assert.NotContains(t, seg, Separator)
		assert.NotContains(t, seg, "-")
	}
}

func TestBuildParentRoundtrip(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	root := Build("", a)
	require.True(t, IsRoot(root))
	_, ok := Parent(root)
	assert.False(t, ok, "root path has no parent")

	child := Build(root, b)
	parent, ok := Parent(child)
	require.True(t, ok)
	assert.Equal(t, root, parent)

	grandchild := Build(child, c)
	parent, ok = Parent(grandchild)
	require.True(t, ok)
	assert.Equal(t, child, parent)
}

func TestDepth(t *testing.T) {
	root := Build("", uuid.New())
	child := Build(root, uuid.New())
	grandchild := Build(child, uuid.New())

	assert.Equal(t, 0, Depth(root))
	assert.Equal(t, 1, Depth(child))
	assert.Equal(t, 2, Depth(grandchild))
}

func TestIsDescendantOf(t *testing.T) {
	root := Build("", uuid.New())
	child := Build(root, uuid.New())
	grandchild := Build(child, uuid.New())
	sibling := Build(root, uuid.New())

	assert.True(t, IsDescendantOf(child, root))
	assert.True(t, IsDescendantOf(grandchild, root))
	assert.True(t, IsDescendantOf(grandchild, child))

	assert.False(t, IsDescendantOf(root, root), "a path is not its own descendant")
	assert.False(t, IsDescendantOf(root, child))
	assert.False(t, IsDescendantOf(sibling, child))
}

func TestDescendantTransitivity(t *testing.T) {
	a := Build("", uuid.New())
	b := Build(a, uuid.New())
	c := Build(b, uuid.New())

	require.True(t, IsDescendantOf(b, a))
	require.True(t, IsDescendantOf(c, b))
	assert.True(t, IsDescendantOf(c, a))
}

func TestPrefixConfusion(t *testing.T) {
	// "ab" must not look like an ancestor of "abc.d" even though it is
	// a string prefix.
	assert.False(t, IsDescendantOf("abc.d", "ab"))
	assert.True(t, IsDescendantOf("ab.c", "ab"))
}

func TestRoot(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	root := Build("", a)
	child := Build(root, b)

	assert.Equal(t, root, Root(child))
	assert.Equal(t, root, Root(root))
}

func TestRebase(t *testing.T) {
	a, b, c, n := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	oldPath := Build(Build("", a), b)
	desc := Build(oldPath, c)
	newPath := Build(Build("", n), b)

	moved := Rebase(desc, oldPath, newPath)
	assert.True(t, IsDescendantOf(moved, newPath))
	assert.True(t, strings.HasSuffix(moved, Separator+Segment(c)))
	assert.Equal(t, Depth(desc)-Depth(oldPath), Depth(moved)-Depth(newPath), "relative depth preserved")

	unrelated := Build("", uuid.New())
	assert.Equal(t, unrelated, Rebase(unrelated, oldPath, newPath))
}
