// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// RPCFixture is an in-process stand-in for a gno.land RPC node. It speaks
// just enough of the abci_query wire protocol for package and file queries
// and records every query path it serves.
type RPCFixture struct {
	Server *httptest.Server

	mu       sync.Mutex
	packages map[string]map[string]string
	requests []string
}

// NewRPCFixture starts the fixture server and registers its shutdown with
// the test's cleanup.
func NewRPCFixture(t *testing.T) *RPCFixture {
	t.Helper()
	fixture := &RPCFixture{packages: map[string]map[string]string{}}
	fixture.Server = httptest.NewServer(http.HandlerFunc(fixture.handle))
	t.Cleanup(fixture.Server.Close)
	return fixture
}

// Endpoint returns the base URL clients should dial.
func (f *RPCFixture) Endpoint() string {
	return f.Server.URL
}

// AddFile registers a file under a package path.
func (f *RPCFixture) AddFile(pkg string, name string, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.packages[pkg] == nil {
		f.packages[pkg] = map[string]string{}
	}
	f.packages[pkg][name] = content
}

// Requests returns the query paths served so far, in arrival order.
func (f *RPCFixture) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// RequestCount returns the number of queries served so far.
func (f *RPCFixture) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *RPCFixture) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var request struct {
		Params struct {
			Path string `json:"path"`
			Data string `json:"data"`
		} `json:"params"`
	}
	if err := json.Unmarshal(body, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	raw, err := base64.StdEncoding.DecodeString(request.Params.Data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	queryPath := string(raw)

	f.mu.Lock()
	f.requests = append(f.requests, queryPath)
	payload, remoteErr := f.lookupLocked(queryPath)
	f.mu.Unlock()

	errField := "null"
	if remoteErr != "" {
		errField = `{"@type":"/vm.InvalidPkgPathError"}`
	}
	response := `{"jsonrpc":"2.0","id":1,"result":{"response":{"ResponseBase":{` +
		`"Error":` + errField + `,` +
		`"Data":"` + base64.StdEncoding.EncodeToString([]byte(payload)) + `",` +
		`"Log":"` + remoteErr + `"}}}}`
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(response))
}

func (f *RPCFixture) lookupLocked(queryPath string) (payload string, remoteErr string) {
	if files, ok := f.packages[queryPath]; ok {
		names := make([]string, 0, len(files))
		for name := range files {
			names = append(names, name)
		}
		sort.Strings(names)
		return strings.Join(names, "\n"), ""
	}
	slash := strings.LastIndex(queryPath, "/")
	if slash > 0 {
		pkg, name := queryPath[:slash], queryPath[slash+1:]
		if content, ok := f.packages[pkg][name]; ok {
			return content, ""
		}
	}
	return "", "invalid package path"
}
