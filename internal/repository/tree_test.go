package repository

import (
	"testing"

	"blogapi/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func sampleRows() []model.Category {
	return []model.Category{
		{ID: "root", Name: "Root"},
		{ID: "a", Name: "A", ParentID: ptr("root")},
		{ID: "b", Name: "B", ParentID: ptr("root")},
		{ID: "a1", Name: "A1", ParentID: ptr("a")},
		{ID: "orphan", Name: "Orphan", ParentID: ptr("gone")},
	}
}

func TestNestTree(t *testing.T) {
	t.Run("nests by parent keeping row order", func(t *testing.T) {
		tree, ok := NestTree("root", sampleRows())
		require.True(t, ok)

		assert.Equal(t, "root", tree.ID)
		require.Len(t, tree.Children, 2)
		assert.Equal(t, "a", tree.Children[0].ID)
		assert.Equal(t, "b", tree.Children[1].ID)
		require.Len(t, tree.Children[0].Children, 1)
		assert.Equal(t, "a1", tree.Children[0].Children[0].ID)
		assert.Empty(t, tree.Children[1].Children)
	})

	t.Run("shape", func(t *testing.T) {
		tree, ok := NestTree("a", sampleRows())
		require.True(t, ok)

		want := model.Category{
			ID: "a", Name: "A", ParentID: ptr("root"),
			Children: []model.Category{
				{ID: "a1", Name: "A1", ParentID: ptr("a"), Children: []model.Category{}},
			},
		}
		if diff := cmp.Diff(want, tree); diff != "" {
			t.Errorf("NestTree mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("cycle in rows terminates", func(t *testing.T) {
		rows := []model.Category{
			{ID: "x", ParentID: ptr("y")},
			{ID: "y", ParentID: ptr("x")},
		}
		tree, ok := NestTree("x", rows)
		require.True(t, ok)
		require.Len(t, tree.Children, 1)
		assert.Empty(t, tree.Children[0].Children)
	})

	t.Run("missing root", func(t *testing.T) {
		_, ok := NestTree("nope", sampleRows())
		assert.False(t, ok)
	})

	t.Run("leaf", func(t *testing.T) {
		tree, ok := NestTree("a1", sampleRows())
		require.True(t, ok)
		assert.Empty(t, tree.Children)
	})
}

func TestFlattenTrees(t *testing.T) {
	tree, ok := NestTree("root", sampleRows())
	require.True(t, ok)

	flat := FlattenTrees([]model.Category{tree}, 0, nil)

	ids := make([]string, len(flat))
	for i, c := range flat {
		ids[i] = c.ID
		assert.Nil(t, c.Children)
	}
	assert.Equal(t, []string{"root", "a", "a1", "b"}, ids)

	assert.Equal(t, 0, flat[0].Depth)
	assert.Nil(t, flat[0].Parent)

	assert.Equal(t, 1, flat[1].Depth)
	require.NotNil(t, flat[1].Parent)
	assert.Equal(t, "root", flat[1].Parent.ID)

	assert.Equal(t, 2, flat[2].Depth)
	require.NotNil(t, flat[2].Parent)
	assert.Equal(t, "a", flat[2].Parent.ID)
	assert.Nil(t, flat[2].Parent.Parent)

	assert.Empty(t, FlattenTrees(nil, 0, nil))
}
