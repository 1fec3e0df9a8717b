
//go:build integration

package integration

import (
	"context"
	"regexp"
	"testing"
	"time"

	"condo-extractor/internal/cache"
	"condo-extractor/internal/crawler"
	"condo-extractor/internal/listing"
	"condo-extractor/internal/photo"
)

func TestCentrisListingPage(t *testing.T) {
	// live listing (subject to removal / bot protection)
	url := listing.BuildURL("16819211")

	dir := t.TempDir()
	client := crawler.NewHTTPClient(25*time.Second, 5*time.Second, 5*1024*1024)
	store := cache.NewStore(dir, nil)
	svc := listing.NewService(listing.Deps{
		Validator: listing.NewValidator(regexp.MustCompile(listing.DefaultListingPattern)),
		Fetcher:   client,
		Store:     store,
		Photos:    photo.NewResolver(dir, regexp.MustCompile(photo.DefaultMediaPattern), client, nil),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := svc.Extract(ctx, url)
	if err != nil {
		t.Skipf("skipping: extraction failed due to network/removal/captcha: %v", err)
		return
	}
	if res.FromCache {
		t.Fatalf("first extraction must not come from cache")
	}
	if res.Record.Identifier != "16819211" {
		t.Errorf("identifier = %q", res.Record.Identifier)
	}
	if res.Record.Price == nil {
		t.Errorf("expected a price on a live listing")
	}

	again, err := svc.Extract(ctx, url)
	if err != nil {
		t.Fatalf("second extraction: %v", err)
	}
	if !again.FromCache {
		t.Errorf("second extraction should be served from cache")
	}
}
