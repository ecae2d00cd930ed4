package splitclient

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/infrastructure/codec"
)

func TestClient_Split(t *testing.T) {
	crop, err := codec.EncodeBase64(image.NewNRGBA(image.Rect(0, 0, 30, 20)), 90)
	require.NoError(t, err)
	snap, err := codec.EncodeBase64(image.NewGray(image.Rect(0, 0, 100, 80)), 90)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, ProcessPath, r.URL.Path)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		require.Equal(t, "page.png", header.Filename)
		require.Equal(t, []byte("raw-bytes"), data)
		require.Equal(t, "aspect-ratio", r.FormValue("policy"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"request_id": "abc",
			"width":      100,
			"height":     80,
			"policy":     "aspect-ratio",
			"regions":    []map[string]any{{"x": 5, "y": 6, "width": 30, "height": 20, "image": crop}},
			"snapshots":  map[string]string{"gray": snap},
		})
	}))
	defer srv.Close()

	client := New(srv.URL+"/", time.Second)
	result, err := client.Split(context.Background(), "/scans/page.png", []byte("raw-bytes"), entity.PolicyAspectRatio)
	require.NoError(t, err)

	require.Equal(t, 100, result.Width)
	require.Equal(t, entity.PolicyAspectRatio, result.Policy)
	require.Len(t, result.Regions, 1)
	require.Equal(t, entity.BoundingBox{X: 5, Y: 6, Width: 30, Height: 20}, result.Regions[0].Box)
	require.Equal(t, "/scans/page.png", result.Regions[0].Source)
	require.Equal(t, image.Rect(0, 0, 30, 20), result.Regions[0].Image.Bounds())
	require.Contains(t, result.Snapshots, "gray")
}

func TestClient_SplitErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid_image","message":"image could not be decoded"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Split(context.Background(), "x.jpg", []byte("x"), "")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadRequest, statusErr.Status)
	require.Equal(t, "invalid_image", statusErr.Code)
}

func TestClient_SplitBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"regions":[{"x":0,"y":0,"width":1,"height":1,"image":"bm90IGFuIGltYWdl"}]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Split(context.Background(), "x.jpg", []byte("x"), "")
	require.True(t, entity.IsDecodeError(err))
}

func TestClient_CheckHealth(t *testing.T) {
	var unhealthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		if unhealthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	require.NoError(t, client.CheckHealth(context.Background()))

	unhealthy.Store(true)
	require.Error(t, client.CheckHealth(context.Background()))
}
