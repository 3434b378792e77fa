package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_SaveAndLoad(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "state")
	gw, err := NewGateway(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := gw.Load(ctx, "users")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, gw.Save(ctx, "users", []byte(`[1]`)))
	require.NoError(t, gw.Save(ctx, "users", []byte(`[1,2]`)))

	blob, found, err := gw.Load(ctx, "users")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[1,2]`, string(blob))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "users.json", entries[0].Name())
}

func TestGateway_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	gw, err := NewGateway(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, gw.Save(ctx, "users", []byte(`[]`)))
	require.NoError(t, gw.Save(ctx, "scanLog", []byte(`{}`)))

	users, _, err := gw.Load(ctx, "users")
	require.NoError(t, err)
	scans, _, err := gw.Load(ctx, "scanLog")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(users))
	assert.Equal(t, `{}`, string(scans))
}

func TestGateway_RejectsInvalidKey(t *testing.T) {
	t.Parallel()

	gw, err := NewGateway(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, gw.Save(context.Background(), "../escape", []byte(`x`)))
	_, _, err = gw.Load(context.Background(), "")
	assert.Error(t, err)
}

func TestGateway_SaveFailsWhenDirectoryIsGone(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "state")
	gw, err := NewGateway(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	assert.Error(t, gw.Save(context.Background(), "users", []byte(`[]`)))
}

func TestNewGateway_RequiresDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewGateway("")
	assert.Error(t, err)
}
