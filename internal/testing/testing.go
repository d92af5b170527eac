// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/services"
	"github.com/desertthunder/setlistx/internal/shared"
)

// MockService is a test double for [services.Service].
//
// Searches resolve through Tracks (title → platform ID); every call is recorded and safe for concurrent use.
type MockService struct {
	ServiceKind models.ServiceKind
	Tracks      map[string]string
	SearchErrs  map[string]error
	IdentifyID  string
	IdentifyErr error
	CreateErr   error
	AddErr      error
	AddLimit    int // when > 0, at most this many items are added per call
	DeleteErr   error

	mu         sync.Mutex
	searches   []string
	identifies int
	created    []services.PlaylistSpec
	added      [][]string
	deleted    []string
}

// NewMockService creates a [MockService] for kind that finds the given tracks.
func NewMockService(kind models.ServiceKind, tracks map[string]string) *MockService {
	return &MockService{ServiceKind: kind, Tracks: tracks, IdentifyID: "user-1"}
}

func (m *MockService) Kind() models.ServiceKind { return m.ServiceKind }

func (m *MockService) Name() string { return m.ServiceKind.DisplayName() }

func (m *MockService) Identify(ctx context.Context, cred models.Credential) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identifies++
	if m.IdentifyErr != nil {
		return "", m.IdentifyErr
	}
	return m.IdentifyID, nil
}

func (m *MockService) SearchTrack(ctx context.Context, title, artist string, cred models.Credential) (string, bool, error) {
	m.mu.Lock()
	m.searches = append(m.searches, title)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := m.SearchErrs[title]; err != nil {
		return "", false, err
	}
	id, ok := m.Tracks[title]
	return id, ok, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, owner string, spec services.PlaylistSpec, cred models.Credential) (*services.CreatedPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.created = append(m.created, spec)
	id := fmt.Sprintf("pl-%s-%d", owner, len(m.created))
	return &services.CreatedPlaylist{ID: id, URL: services.PlaylistURL(m.ServiceKind, id)}, nil
}

func (m *MockService) AddItems(ctx context.Context, playlistID string, ids []string, cred models.Credential) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, append([]string(nil), ids...))
	n := len(ids)
	if m.AddLimit > 0 && n > m.AddLimit {
		n = m.AddLimit
	}
	if m.AddErr != nil {
		return n, m.AddErr
	}
	return n, nil
}

func (m *MockService) DeletePlaylist(ctx context.Context, playlistID string, cred models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, playlistID)
	return m.DeleteErr
}

// Searches returns searched titles in call order.
func (m *MockService) Searches() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searches...)
}

// Identifies returns how many times Identify was called.
func (m *MockService) Identifies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identifies
}

// Created returns the specs of created playlists.
func (m *MockService) Created() []services.PlaylistSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.PlaylistSpec(nil), m.created...)
}

// Added returns the ID batches passed to AddItems.
func (m *MockService) Added() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.added...)
}

// Deleted returns deleted playlist IDs.
func (m *MockService) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// MockFetcher is a test double for setlist.Fetcher.
type MockFetcher struct {
	Setlist *models.Setlist
	Err     error

	mu    sync.Mutex
	calls []string
}

func (f *MockFetcher) FetchLatest(ctx context.Context, artist string) (*models.Setlist, error) {
	f.mu.Lock()
	f.calls = append(f.calls, artist)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if f.Setlist == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrSetlistNotFound, artist)
	}
	sl := *f.Setlist
	sl.ArtistQuery = artist
	sl.Songs = append([]string(nil), f.Setlist.Songs...)
	return &sl, nil
}

// Calls returns the artists requested so far.
func (f *MockFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
