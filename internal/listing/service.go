// Package listing turns a listing URL into a cached ListingRecord.
package listing

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"condo-extractor/internal/cache"
	"condo-extractor/internal/classifier"
	"condo-extractor/internal/extract"
	"condo-extractor/internal/metrics"
	"condo-extractor/internal/models"
	"condo-extractor/internal/parser"
)

// Stage names a step of the extraction of one listing.
type Stage string

const (
	StageResolvingIdentifier Stage = "resolving_identifier"
	StageCacheLookup         Stage = "cache_lookup"
	StageCacheHit            Stage = "cache_hit"
	StageFetching            Stage = "fetching"
	StageParsing             Stage = "parsing"
	StageExtracting          Stage = "extracting"
	StageDeriving            Stage = "deriving"
	StageResolvingPhoto      Stage = "resolving_photo"
	StageCommitting          Stage = "committing"
	StageDone                Stage = "done"
	StageFailed              Stage = "failed"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error)
}

type Store interface {
	Lookup(id string) (*models.ListingRecord, error)
	Commit(id string, rec models.ListingRecord) error
}

type PhotoResolver interface {
	Resolve(ctx context.Context, page *parser.Page, id string) (string, bool)
}

type Deps struct {
	Validator *Validator
	Fetcher   Fetcher
	Parser    *parser.Parser
	Classify  *classifier.Classifier
	Store     Store
	Photos    PhotoResolver
	Metrics   *metrics.Metrics
	Log       *zap.Logger
	Now       func() time.Time
}

// Service sequences one extraction: validate, look up the cache, fetch,
// parse, extract, derive, resolve the photo and commit. It holds no
// per-request state; concurrent calls for the same identifier both fetch
// and the last commit wins.
type Service struct {
	validator *Validator
	fetcher   Fetcher
	parser    *parser.Parser
	classify  *classifier.Classifier
	store     Store
	photos    PhotoResolver
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		validator: d.Validator,
		fetcher:   d.Fetcher,
		parser:    d.Parser,
		classify:  d.Classify,
		store:     d.Store,
		photos:    d.Photos,
		metrics:   d.Metrics,
		log:       d.Log,
		now:       d.Now,
	}
	if s.parser == nil {
		s.parser = parser.New()
	}
	if s.classify == nil {
		s.classify = classifier.New()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Extract returns the record for rawURL, from the cache when one was
// committed before. Invalid input fails with ErrInvalidURL or
// ErrNoIdentifier before any network access. Fetch, parse and cache
// failures are returned wrapped with the stage they happened in; nothing
// is committed in that case. Missing fields and photo failures are not
// errors.
func (s *Service) Extract(ctx context.Context, rawURL string) (models.ExtractResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	log := s.log.With(zap.String("url", rawURL))

	log.Debug("listing stage", zap.String("stage", string(StageResolvingIdentifier)))
	id, err := s.validator.Validate(rawURL)
	if err != nil {
		s.metrics.Extraction(metrics.OutcomeInvalid)
		return models.ExtractResult{}, err
	}
	log = log.With(zap.String("identifier", id))

	cached, err := s.store.Lookup(id)
	if err != nil {
		return s.fail(log, StageCacheLookup, err)
	}
	if cached != nil {
		s.metrics.Extraction(metrics.OutcomeCacheHit)
		log.Info("listing served from cache", zap.String("stage", string(StageCacheHit)))
		return models.ExtractResult{Record: *cached, FromCache: true}, nil
	}

	log.Debug("listing stage", zap.String("stage", string(StageFetching)))
	body, finalURL, contentType, elapsed, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return s.fail(log, StageFetching, err)
	}
	defer body.Close()
	s.metrics.ObserveFetch(elapsed)
	log.Debug("listing fetched", zap.String("final_url", finalURL), zap.Duration("elapsed", elapsed))

	log.Debug("listing stage", zap.String("stage", string(StageParsing)))
	page, err := s.parser.Parse(body, contentType)
	if err != nil {
		return s.fail(log, StageParsing, err)
	}
	if kind := s.classify.Classify(page); kind.Label != classifier.LabelListing {
		log.Warn("fetched page does not look like a listing",
			zap.String("kind", kind.Label),
			zap.Any("signals", kind.Reason),
		)
	}

	log.Debug("listing stage", zap.String("stage", string(StageExtracting)))
	fields, misses := extract.Run(page)

	log.Debug("listing stage", zap.String("stage", string(StageDeriving)))
	fin := extract.Financials(page)
	misses = append(misses, fin.Misses()...)
	if len(misses) > 0 {
		s.metrics.FieldMisses(misses)
		log.Debug("fields not found", zap.Strings("fields", misses))
	}

	rec := models.ListingRecord{
		Identifier:               id,
		URL:                      rawURL,
		Address:                  fields.Address,
		Price:                    fields.Price,
		Bedrooms:                 fields.Bedrooms,
		Bathrooms:                fields.Bathrooms,
		Sqft:                     fields.Sqft,
		YearBuilt:                fields.YearBuilt,
		MunicipalAssessmentTotal: fin.Total,
		MunicipalTerrain:         fin.Terrain,
		MunicipalBuilding:        fin.Building,
		TaxesMunicipal:           fin.TaxesMunicipal,
		TaxesSchool:              fin.TaxesSchool,
		CondoFee:                 fin.CondoFee,
	}

	log.Debug("listing stage", zap.String("stage", string(StageResolvingPhoto)))
	s.resolvePhoto(ctx, page, &rec)

	log.Debug("listing stage", zap.String("stage", string(StageCommitting)))
	rec.ExtractionDate = s.now().UTC()
	if err := s.store.Commit(id, rec); err != nil {
		return s.fail(log, StageCommitting, err)
	}

	s.metrics.Extraction(metrics.OutcomeExtracted)
	log.Info("listing extracted",
		zap.String("stage", string(StageDone)),
		zap.Int("missing_fields", len(misses)),
		zap.Bool("photo", rec.PhotoPath != nil),
	)
	return models.ExtractResult{Record: rec}, nil
}

func (s *Service) resolvePhoto(ctx context.Context, page *parser.Page, rec *models.ListingRecord) {
	if s.photos == nil {
		return
	}
	src, ok := s.photos.Resolve(ctx, page, rec.Identifier)
	if !ok {
		s.metrics.Photo(metrics.PhotoMissing)
		return
	}
	s.metrics.Photo(metrics.PhotoOK)
	path := cache.PhotoFile(rec.Identifier)
	rec.PhotoURL = &src
	rec.PhotoPath = &path
}

func (s *Service) fail(log *zap.Logger, stage Stage, err error) (models.ExtractResult, error) {
	s.metrics.Extraction(metrics.OutcomeFailed)
	log.Error("listing extraction failed",
		zap.String("stage", string(StageFailed)),
		zap.String("failed_stage", string(stage)),
		zap.Error(err),
	)
	return models.ExtractResult{}, fmt.Errorf("%s: %w", stage, err)
}
