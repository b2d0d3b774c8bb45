package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterStore_RoundTrip(t *testing.T) {
	store, err := NewLetterStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("obj-1", strings.NewReader("fee letter body")))

	r, err := store.Open("obj-1")
	require.NoError(t, err)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "fee letter body", string(body))

	require.NoError(t, store.Remove("obj-1"))

	_, err = store.Open("obj-1")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// removing twice is fine
	require.NoError(t, store.Remove("obj-1"))
}

func TestLetterStore_RejectsPathEscapes(t *testing.T) {
	store, err := NewLetterStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "../evil", "a/b", `a\b`} {
		assert.ErrorIs(t, store.Save(id, strings.NewReader("x")), ErrObjectIDInvalid, "id %q", id)
	}
}
