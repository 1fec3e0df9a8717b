package photo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condo-extractor/internal/crawler"
	"condo-extractor/internal/parser"
)

type fakeDownloader struct {
	calls []string
	data  string
	err   error
}

func (f *fakeDownloader) Download(_ context.Context, rawURL string, w io.Writer) (int64, error) {
	f.calls = append(f.calls, rawURL)
	if f.err != nil {
		return 0, f.err
	}
	n, err := io.WriteString(w, f.data)
	return int64(n), err
}

func page(t *testing.T, body string) *parser.Page {
	t.Helper()
	p, err := parser.New().Parse(strings.NewReader(body), "text/html")
	require.NoError(t, err)
	return p
}

var mediaRe = regexp.MustCompile(DefaultMediaPattern)

func TestFindPrimaryPhoto(t *testing.T) {
	r := NewResolver(t.TempDir(), mediaRe, &fakeDownloader{}, nil)
	p := page(t, `<html><body>
<img src="https://mspublic.centris.ca/media.ashx?id=ABC&t=photo">
<img src="//mspublic.centris.ca/media.ashx?id=ABC&t=pi&sm=m">
</body></html>`)

	src, ok := r.Find(p)
	require.True(t, ok)
	assert.Equal(t, "https://mspublic.centris.ca/media.ashx?id=ABC&t=pi&sm=m", src)
}

func TestFindNoPhoto(t *testing.T) {
	r := NewResolver(t.TempDir(), mediaRe, &fakeDownloader{}, nil)
	_, ok := r.Find(page(t, `<html><body><img src="/logo.png"></body></html>`))
	assert.False(t, ok)
}

func TestResolveStoresPhoto(t *testing.T) {
	dir := t.TempDir()
	dl := &fakeDownloader{data: "jpeg"}
	r := NewResolver(dir, mediaRe, dl, nil)

	src, ok := r.Resolve(context.Background(),
		page(t, `<img src="https://mspublic.centris.ca/media.ashx?id=X&t=pi">`), "16819211")
	require.True(t, ok)
	assert.Equal(t, "https://mspublic.centris.ca/media.ashx?id=X&t=pi", src)

	got, err := os.ReadFile(filepath.Join(dir, "16819211.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(got))
}

func TestResolveDownloadFailureIsSoft(t *testing.T) {
	dir := t.TempDir()
	dl := &fakeDownloader{err: errors.New("connection reset")}
	r := NewResolver(dir, mediaRe, dl, nil)

	_, ok := r.Resolve(context.Background(),
		page(t, `<img src="https://mspublic.centris.ca/media.ashx?id=X&t=pi">`), "7")
	assert.False(t, ok)
	assert.Len(t, dl.calls, 1)
	_, err := os.Stat(filepath.Join(dir, "7.jpeg"))
	assert.True(t, os.IsNotExist(err))
}

func TestResolveOverHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") != "pi" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8})
	}))
	defer ts.Close()

	dir := t.TempDir()
	client := crawler.NewHTTPClient(5*time.Second, time.Second, 1<<20)
	media := regexp.MustCompile(regexp.QuoteMeta(ts.URL) + `/media\.ashx.*[?&]t=pi\b`)
	r := NewResolver(dir, media, client, nil)

	_, ok := r.Resolve(context.Background(),
		page(t, `<img src="`+ts.URL+`/media.ashx?id=1&t=pi">`), "1")
	require.True(t, ok)
	info, err := os.Stat(filepath.Join(dir, "1.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Size())
}
