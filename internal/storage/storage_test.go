package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikhilbhutani/podcastgen/internal/config"
)

func TestSupabaseUploadFile(t *testing.T) {
	var gotPath, gotType, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"Key":"ok"}`))
	}))
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "show.mp3")
	if err := os.WriteFile(local, []byte("ID3audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSupabaseStorage(srv.URL+"/", "svc", "podcasts", 0)
	key := ArtifactKey("job-1", local)
	u, err := UploadFile(context.Background(), s, key, local)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if gotPath != "/storage/v1/object/podcasts/podcasts/job-1/show.mp3" {
		t.Errorf("path = %s", gotPath)
	}
	if gotType != "audio/mpeg" || gotAuth != "Bearer svc" || string(gotBody) != "ID3audio" {
		t.Errorf("type=%q auth=%q body=%q", gotType, gotAuth, gotBody)
	}
	if u != srv.URL+"/storage/v1/object/public/podcasts/podcasts/job-1/show.mp3" {
		t.Errorf("url = %s", u)
	}
}

func TestSupabaseUploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewSupabaseStorage(srv.URL, "k", "b", 0).Upload(context.Background(), "x.mp3", nil, 0, "audio/mpeg")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSupabaseSignedURL(t *testing.T) {
	var gotPath string
	var gotBody map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"signedURL":"/object/sign/podcasts/a.mp3?token=t"}`))
	}))
	defer srv.Close()

	u, err := NewSupabaseStorage(srv.URL, "k", "podcasts", time.Hour).URL(context.Background(), "a.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/storage/v1/object/sign/podcasts/a.mp3" || gotBody["expiresIn"] != 3600 {
		t.Errorf("path=%s body=%v", gotPath, gotBody)
	}
	if u != srv.URL+"/storage/v1/object/sign/podcasts/a.mp3?token=t" {
		t.Errorf("url = %s", u)
	}
}

func TestSupabaseDownloadMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`))
	}))
	defer srv.Close()

	_, err := NewSupabaseStorage(srv.URL, "k", "b", 0).Download(context.Background(), "gone.mp3")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("err = %v, want ErrObjectNotFound", err)
	}
}

func TestNewBackends(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{})
	if err != nil || s != nil {
		t.Errorf("disabled backend = %v, %v", s, err)
	}
	if _, err := New(context.Background(), config.StorageConfig{Backend: "ftp"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
