package integration

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const (
	folderID      = "folder-1"
	spreadsheetID = "sheet-1"
)

// fakeGoogle serves the Drive and Sheets endpoints used by setup-package.
type fakeGoogle struct {
	mu        sync.Mutex
	files     map[string][]byte // file id -> contents
	names     map[string]string // file id -> name
	order     []string          // listing order
	values    [][]any           // Sheet1 values, header first
	requests  []string
	listFails bool
}

func newFakeGoogle() *fakeGoogle {
	return &fakeGoogle{
		files: make(map[string][]byte),
		names: make(map[string]string),
	}
}

func (f *fakeGoogle) addFile(id, name string, data []byte) {
	f.files[id] = data
	f.names[id] = name
	f.order = append(f.order, id)
}

// start runs the fake and returns client options pointing at it.
func (f *fakeGoogle) start(t *testing.T) []option.ClientOption {
	t.Helper()

	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	return []option.ClientOption{
		option.WithEndpoint(server.URL + "/"),
		option.WithHTTPClient(server.Client()),
	}
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.URL.Path)
	path := r.URL.Path

	switch {
	case path == "/files":
		f.list(w, r)
	case strings.HasPrefix(path, "/files/"):
		data, ok := f.files[strings.TrimPrefix(path, "/files/")]
		if !ok || r.URL.Query().Get("alt") != "media" {
			notFound(w)
			return
		}

		_, _ = w.Write(data)
	case path == "/v4/spreadsheets/"+spreadsheetID:
		writeJSON(w, map[string]any{
			"sheets": []map[string]any{{"properties": map[string]any{"title": "Sheet1"}}},
		})
	case strings.HasPrefix(path, "/v4/spreadsheets/"+spreadsheetID+"/values/"):
		writeJSON(w, map[string]any{"values": f.values})
	default:
		notFound(w)
	}
}

func (f *fakeGoogle) list(w http.ResponseWriter, r *http.Request) {
	if f.listFails || !strings.Contains(r.URL.Query().Get("q"), folderID) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"insufficient permissions"}}`))

		return
	}

	files := make([]map[string]any, 0, len(f.order))
	for _, id := range f.order {
		files = append(files, map[string]any{
			"id":   id,
			"name": f.names[id],
			"size": strconv.Itoa(len(f.files[id])),
		})
	}

	writeJSON(w, map[string]any{"files": files})
}

// downloads counts media requests.
func (f *fakeGoogle) downloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0

	for _, path := range f.requests {
		if strings.HasPrefix(path, "/files/") {
			count++
		}
	}

	return count
}

// sheetRequests counts Sheets API requests.
func (f *fakeGoogle) sheetRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0

	for _, path := range f.requests {
		if strings.HasPrefix(path, "/v4/") {
			count++
		}
	}

	return count
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found."}}`))
}

// buildBundle returns a zip with the given entries.
func buildBundle(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)

	for name, body := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)

		_, err = entry.Write([]byte(body))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}
