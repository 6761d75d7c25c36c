package mirror

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisk struct {
	mu         sync.Mutex
	token      string
	dirs       map[string]bool
	files      map[string][]byte
	lockedOn   string
	lockStatus int // status of a locked upload; zero means 423
	srv        *httptest.Server
}

func newFakeDisk(t *testing.T) *fakeDisk {
	d := &fakeDisk{token: "good", dirs: map[string]bool{"/": true}, files: map[string][]byte{}}
	mux := http.NewServeMux()
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "OAuth "+d.token {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"error":"UnauthorizedError","description":"Unauthorized"}`)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("/v1/disk/", auth(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"total_space":1}`)
	}))
	mux.HandleFunc("/v1/disk/resources", auth(func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()
		path := r.URL.Query().Get("path")
		switch r.Method {
		case http.MethodGet:
			if d.dirs[path] || d.files[path] != nil {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			if d.dirs[path] {
				w.WriteHeader(http.StatusConflict)
				return
			}
			d.dirs[path] = true
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			delete(d.files, path)
			if d.lockedOn == path {
				d.lockedOn = ""
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	mux.HandleFunc("/v1/disk/resources/upload", auth(func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()
		path := r.URL.Query().Get("path")
		if d.lockedOn == path {
			status := d.lockStatus
			if status == 0 {
				status = http.StatusLocked
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"error":"DiskResourceLockedError","description":"Resource is locked"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"href":"`+d.srv.URL+`/put?path=`+url.QueryEscape(path)+`","method":"PUT"}`)
	}))
	mux.HandleFunc("/put", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		d.mu.Lock()
		d.files[r.URL.Query().Get("path")] = b
		d.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	d.srv = httptest.NewServer(mux)
	t.Cleanup(d.srv.Close)
	return d
}

func (d *fakeDisk) client(token string) *YandexDisk {
	return NewYandexDisk(Config{Token: token, BaseURL: d.srv.URL + "/v1/disk", Timeout: 5 * time.Second})
}

func TestYandexDiskCheckToken(t *testing.T) {
	d := newFakeDisk(t)
	ctx := context.Background()

	ok, err := d.client("good").CheckToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.client("stale").CheckToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestYandexDiskDirsAndUpload(t *testing.T) {
	d := newFakeDisk(t)
	y := d.client("good")
	ctx := context.Background()

	ok, err := y.Exists(ctx, "/Боты")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, y.Mkdir(ctx, "/Боты"))
	require.NoError(t, y.Mkdir(ctx, "/Боты"))
	ok, err = y.Exists(ctx, "/Боты")
	require.NoError(t, err)
	assert.True(t, ok)

	local := filepath.Join(t.TempDir(), "subs.xlsx")
	require.NoError(t, os.WriteFile(local, []byte("payload"), 0o600))
	require.NoError(t, y.Upload(ctx, local, "/Боты/subs.xlsx"))
	assert.Equal(t, []byte("payload"), d.files["/Боты/subs.xlsx"])

	require.NoError(t, y.Remove(ctx, "/Боты/subs.xlsx"))
	assert.Nil(t, d.files["/Боты/subs.xlsx"])
}

func TestYandexDiskErrorMapping(t *testing.T) {
	d := newFakeDisk(t)
	d.lockedOn = "/subs.xlsx"
	local := filepath.Join(t.TempDir(), "subs.xlsx")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0o600))

	err := d.client("good").Upload(context.Background(), local, "/subs.xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))
	assert.Contains(t, Remediation(err), "заблокирован")

	err = d.client("stale").Mkdir(context.Background(), "/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.Contains(t, Remediation(err), "YANDEX_TOKEN")

	assert.Contains(t, Remediation(errors.New("boom")), "Локальная копия")
}

func TestYandexDiskErrorBody(t *testing.T) {
	d := newFakeDisk(t)
	d.lockedOn = "/subs.xlsx"
	d.lockStatus = http.StatusConflict
	local := filepath.Join(t.TempDir(), "subs.xlsx")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0o600))

	err := d.client("good").Upload(context.Background(), local, "/subs.xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))
	assert.Contains(t, err.Error(), "Resource is locked")

	err = d.client("stale").Mkdir(context.Background(), "/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(Unauthorized)")
}
