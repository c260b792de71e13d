package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadReturnsBodyAndRejectsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	d := NewHTTPDownloader(srv.Client())
	data, contentType, err := d.Download(context.Background(), srv.URL+"/car.jpg")
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), data)
	require.Equal(t, "image/jpeg", contentType)

	_, _, err = d.Download(context.Background(), srv.URL+"/missing.jpg")
	require.Error(t, err)
}

func TestUploadSendsMultipartFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "vehicles/42", r.FormValue("folder"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "abc.jpg", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte("payload"), content)
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example/vehicles/42/abc.jpg"})
	}))
	defer srv.Close()

	u, err := NewHTTPUploader(srv.URL, srv.Client())
	require.NoError(t, err)
	url, err := u.Upload(context.Background(), bytes.NewReader([]byte("payload")), "image/jpeg", "vehicles/42/abc.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/vehicles/42/abc.jpg", url)
}

func TestUploadFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	u, err := NewHTTPUploader(srv.URL, srv.Client())
	require.NoError(t, err)
	_, err = u.Upload(context.Background(), bytes.NewReader([]byte("payload")), "image/jpeg", "vehicles/1/a.jpg")
	require.Error(t, err)

	_, err = NewHTTPUploader("  ", nil)
	require.Error(t, err)
}
