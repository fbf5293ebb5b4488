package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestDownloadCachesExport(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("Työpaikka,Kuukausipalkka (brutto, euroina)\ngofore,4200\n"))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	req := Request{URL: srv.URL + "/export?format=csv", Dir: dir}
	res, err := Download(context.Background(), req)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if res.Cached {
		t.Fatalf("expected fresh download")
	}
	if res.Filename != "survey.csv" || res.Path != filepath.Join(dir, "survey.csv") {
		t.Fatalf("unexpected result: %+v", res)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if int64(len(data)) != res.Bytes {
		t.Fatalf("expected %d bytes, got %d", res.Bytes, len(data))
	}

	again, err := Download(context.Background(), req)
	if err != nil {
		t.Fatalf("second download: %v", err)
	}
	if !again.Cached || hits.Load() != 1 {
		t.Fatalf("expected cached result without a request, got %+v after %d hits", again, hits.Load())
	}

	req.Force = true
	forced, err := Download(context.Background(), req)
	if err != nil {
		t.Fatalf("forced download: %v", err)
	}
	if forced.Cached || hits.Load() != 2 {
		t.Fatalf("expected forced download, got %+v after %d hits", forced, hits.Load())
	}
}

func TestDownloadBadStatusLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	if _, err := Download(context.Background(), Request{URL: srv.URL + "/data.xlsx", Dir: dir}); err == nil {
		t.Fatalf("expected error for 404")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no leftover files, got %d", len(entries))
	}
}

func TestDownloadRequiresURLAndDir(t *testing.T) {
	if _, err := Download(context.Background(), Request{Dir: t.TempDir()}); err == nil {
		t.Fatalf("expected error without url")
	}
	if _, err := Download(context.Background(), Request{URL: "http://example.invalid/a.csv"}); err == nil {
		t.Fatalf("expected error without dir")
	}
}

func TestFilenameFor(t *testing.T) {
	cases := map[string]string{
		"https://example.com/files/palkat.xlsx":            "palkat.xlsx",
		"https://docs.example.com/d/abc/export?format=tsv": "survey.tsv",
		"https://docs.example.com/d/abc/export":            "survey.csv",
		"https://example.com/":                             "survey.csv",
	}
	for in, want := range cases {
		if got := FilenameFor(in); got != want {
			t.Fatalf("FilenameFor(%q) = %q, want %q", in, got, want)
		}
	}
}
