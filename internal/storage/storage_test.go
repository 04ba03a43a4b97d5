package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestDetectImage(t *testing.T) {
	mime, ext, err := DetectImage(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, ".png", ext)

	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
	mime, _, err = DetectImage(jpeg)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	_, _, err = DetectImage([]byte("#!/bin/sh\nrm -rf /\n"))
	var notImage *ErrNotAnImage
	require.True(t, errors.As(err, &notImage))
	assert.Contains(t, notImage.Detected, "text/")
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"avatar.png":            "avatar.png",
		"../../etc/passwd":      "passwd",
		"C:\\Users\\me\\a b.jpg": "a_b.jpg",
		"ảnh đại diện.png":      "nh_i_di_n.png",
		"...":                   "file",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, validateKey("avatars/m1/1.png"))
	assert.Error(t, validateKey("avatars/../secrets"))
	assert.Error(t, validateKey(""))
}

func TestNewS3Storage(t *testing.T) {
	_, err := NewS3Storage(Options{})
	assert.Error(t, err)

	_, err = NewS3Storage(Options{Bucket: "avatars"})
	assert.Error(t, err)

	s, err := NewS3Storage(Options{AccountID: "acc", Bucket: "avatars", PublicBaseURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/m1.png", s.PublicURL("avatars/m1.png"))

	s, err = NewS3Storage(Options{Endpoint: "http://localhost:9000", Bucket: "avatars"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/avatars/k.png", s.PublicURL("k.png"))
}

func TestS3Storage_Save(t *testing.T) {
	var (
		mu       sync.Mutex
		gotPath  string
		gotBody  []byte
		gotCType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method == http.MethodPut {
			gotPath = r.URL.Path
			gotCType = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewS3Storage(Options{
		Endpoint:        srv.URL,
		Bucket:          "avatars",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	err = s.Save(context.Background(), "members/m1/avatar.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/avatars/members/m1/avatar.png", gotPath)
	assert.Equal(t, "image/png", gotCType)
	assert.True(t, strings.Contains(string(gotBody), "PNG"))

	assert.Error(t, s.Save(context.Background(), "../x", bytes.NewReader(nil), 0, "image/png"))
}
