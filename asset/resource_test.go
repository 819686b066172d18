package asset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalResource(t *testing.T) {
	meshFile := filepath.Join(t.TempDir(), "Low.OBJ")
	if err := os.WriteFile(meshFile, []byte("v 0 0 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewResource(meshFile, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.IsRemote() {
		t.Fatal("expected local resource not to be remote")
	}
	if ext := res.Ext(); ext != ".obj" {
		t.Fatalf("expected extension to be .obj; got %s", ext)
	}
	if name := res.Name(); name != "Low.OBJ" {
		t.Fatalf("expected name to be Low.OBJ; got %s", name)
	}
	if localPath, ok := res.LocalPath(); !ok || localPath != meshFile {
		t.Fatalf("expected local path to be %s; got %q (%t)", meshFile, localPath, ok)
	}
}

func TestMissingLocalResource(t *testing.T) {
	_, err := NewResource(filepath.Join(t.TempDir(), "missing.obj"), nil)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected to get a not-exist error; got %v", err)
	}
}

func TestHttpResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/meshes/high.obj" {
			w.Write([]byte("v 0 0 0\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	res, err := NewResource(server.URL+"/meshes/high.obj?rev=2", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if !res.IsRemote() {
		t.Fatal("expected http resource to be remote")
	}
	if ext := res.Ext(); ext != ".obj" {
		t.Fatalf("expected extension to be .obj; got %s", ext)
	}
	if _, ok := res.LocalPath(); ok {
		t.Fatal("expected remote resource not to have a local path")
	}
	data, err := io.ReadAll(res)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v 0 0 0\n" {
		t.Fatalf("unexpected payload %q", string(data))
	}

	fetchURL := server.URL + "/file-not-found.obj"
	expError := fmt.Sprintf("resource: could not fetch '%s': status %d", fetchURL, 404)
	_, err = NewResource(fetchURL, nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestRelativeResources(t *testing.T) {
	serverHits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHits++
		if r.URL.Path == "/foo/mesh.gltf" || r.URL.Path == "/foo/mesh.bin" {
			w.Write([]byte("OK"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	res1, err := NewResource(server.URL+"/foo/mesh.gltf", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res1.Close()
	res2, err := NewResource("mesh.bin", res1)
	if err != nil {
		t.Fatal(err)
	}
	defer res2.Close()

	if serverHits != 2 {
		t.Fatalf("expected server to receive 2 requests; got %d", serverHits)
	}
}

func TestUnsupportedResourceScheme(t *testing.T) {
	expError := "resource: unsupported scheme 'gopher'"
	_, err := NewResource("gopher://digging.obj", nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestStreamResource(t *testing.T) {
	res := NewResourceFromStream("embedded.obj", strings.NewReader("payload"))
	defer res.Close()

	if res.IsRemote() {
		t.Fatal("expected stream resource not to be remote")
	}
	if _, ok := res.LocalPath(); ok {
		t.Fatal("expected stream resource not to have a local path")
	}
	if ext := res.Ext(); ext != ".obj" {
		t.Fatalf("expected extension to be .obj; got %s", ext)
	}
}
