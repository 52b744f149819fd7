package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janisto/huma-shared-libs/internal/platform/cursor"
)

func TestJSONHandlerAndUpstream(t *testing.T) {
	srv := NewUpstream(t, JSONHandler(t, http.StatusAccepted, map[string]string{"ok": "yes"}))

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "yes", body["ok"])
}

func TestSequence(t *testing.T) {
	seq := NewSequence(t,
		JSONHandler(t, http.StatusServiceUnavailable, nil),
		JSONHandler(t, http.StatusOK, "done"),
	)
	srv := NewUpstream(t, seq)

	statuses := make([]int, 0, 3)
	for range 3 {
		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	assert.Equal(t, []int{503, 200, 200}, statuses)
	assert.Equal(t, 3, seq.Calls())
}

func TestMustCursor(t *testing.T) {
	token := MustCursor(t, map[string]any{"id": "1"})

	var got map[string]any
	require.NoError(t, cursor.DecodeInto(token, &got))
	assert.Equal(t, "1", got["id"])
}

func TestFixedUUID(t *testing.T) {
	a := FixedUUID("item-001")
	assert.Equal(t, a, FixedUUID("item-001"))
	assert.NotEqual(t, a, FixedUUID("item-002"))
	assert.Equal(t, 5, int(a.Version()))
}
