package objstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "https://cdn.example.com/meals/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "user-1", "meal-abc", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/meals/user-1/meal-abc.jpg", url)

	written, err := os.ReadFile(filepath.Join(dir, "user-1", "meal-abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), written)
}
