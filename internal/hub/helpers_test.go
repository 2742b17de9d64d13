package hub

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// archiveEntry is one file in a synthetic .h5p package.
type archiveEntry struct {
	name string
	body string
}

func libraryJSON(machineName string, major, minor, patch int) string {
	return fmt.Sprintf(`{"title":%q,"machineName":%q,"majorVersion":%d,"minorVersion":%d,"patchVersion":%d,"runnable":1,"license":"MIT","author":"Joubel"}`,
		machineName, machineName, major, minor, patch)
}

func buildArchive(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package.h5p")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// fakeHub serves a content-type list and per-machine-name packages.
type fakeHub struct {
	mu        sync.Mutex
	types     []ContentType
	packages  map[string][]byte
	lastForm  map[string]string
	listCalls int
}

func newFakeHub(t *testing.T, types []ContentType, packages map[string][]byte) (*fakeHub, *httptest.Server) {
	t.Helper()
	h := &fakeHub{types: types, packages: packages}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()

		name := strings.TrimPrefix(r.URL.Path, "/v1/content-types/")
		if r.Method == http.MethodPost && name == "" {
			if err := r.ParseForm(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.listCalls++
			h.lastForm = map[string]string{}
			for k := range r.PostForm {
				h.lastForm[k] = r.PostForm.Get(k)
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(contentTypesResponse{ContentTypes: h.types})
			return
		}
		if r.Method == http.MethodGet {
			data, ok := h.packages[name]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(data)
			return
		}
		http.Error(w, "unexpected request", http.StatusMethodNotAllowed)
	}))
	t.Cleanup(srv.Close)
	return h, srv
}

func contentType(id string, major, minor, patch int) ContentType {
	return ContentType{
		ID:                   id,
		Title:                id,
		Version:              Version{Major: major, Minor: minor, Patch: patch},
		CoreAPIVersionNeeded: APIVersion{Major: 1, Minor: 19},
	}
}
