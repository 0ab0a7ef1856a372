package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newFakeGCS counts upload requests that reached the server
func newFakeGCS(t *testing.T) (*GCSStore, *atomic.Int32) {
	t.Helper()
	var uploads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		uploads.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"bucket":"lecture-audio","name":"audio/object.mp3"}`)
	}))
	t.Cleanup(srv.Close)

	client, err := storage.NewClient(context.Background(),
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return &GCSStore{client: client, bucket: "lecture-audio"}, &uploads
}

func TestGCSStore_SaveUploads(t *testing.T) {
	store, uploads := newFakeGCS(t)

	key, err := store.Save(context.Background(), "lecture.mp3", strings.NewReader("fake audio"), "audio/mpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "audio/"))
	assert.Equal(t, int32(1), uploads.Load())
}

func TestGCSStore_FailedReadAbortsUpload(t *testing.T) {
	store, uploads := newFakeGCS(t)
	errDisconnected := errors.New("client disconnected")

	audio := io.MultiReader(strings.NewReader("partial audio"), iotest.ErrReader(errDisconnected))
	_, err := store.Save(context.Background(), "lecture.mp3", audio, "audio/mpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, errDisconnected)
	assert.Zero(t, uploads.Load(), "a partial object must not be finalized")
}
