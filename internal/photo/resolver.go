// Package photo finds the primary listing photo and stores it next to the
// cached record.
package photo

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"condo-extractor/internal/cache"
	"condo-extractor/internal/parser"
)

// DefaultMediaPattern matches the media server URL of a listing's primary
// image ("t=pi").
const DefaultMediaPattern = `(?:https?:)?//mspublic\.centris\.ca/media\.ashx.*[?&]t=pi\b`

type Downloader interface {
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

type Resolver struct {
	dir     string
	media   *regexp.Regexp
	fetcher Downloader
	log     *zap.Logger
}

// NewResolver stores photos under dir. media selects the primary image
// among the page's <img> sources.
func NewResolver(dir string, media *regexp.Regexp, fetcher Downloader, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{dir: dir, media: media, fetcher: fetcher, log: log}
}

// Find returns the absolute URL of the primary image, if the page has one.
func (r *Resolver) Find(page *parser.Page) (string, bool) {
	var src string
	page.Doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v := s.AttrOr("src", "")
		if r.media.MatchString(v) {
			src = v
			return false
		}
		return true
	})
	if src == "" {
		return "", false
	}
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	return src, true
}

// Resolve downloads the primary image to {id}.jpeg and returns its source
// URL. Any failure is logged and reported as no photo.
func (r *Resolver) Resolve(ctx context.Context, page *parser.Page, id string) (string, bool) {
	src, ok := r.Find(page)
	if !ok {
		r.log.Debug("no primary photo on page", zap.String("identifier", id))
		return "", false
	}

	var buf bytes.Buffer
	if _, err := r.fetcher.Download(ctx, src, &buf); err != nil {
		r.log.Warn("photo download failed", zap.String("identifier", id), zap.String("photo_url", src), zap.Error(err))
		return "", false
	}
	if err := cache.WriteAtomic(r.dir, cache.PhotoFile(id), &buf); err != nil {
		r.log.Warn("photo write failed", zap.String("identifier", id), zap.Error(err))
		return "", false
	}
	return src, true
}
