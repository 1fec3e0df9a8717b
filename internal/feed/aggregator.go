// Package feed projects cached listing records into chart data points.
package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"condo-extractor/internal/cache"
	"condo-extractor/internal/models"
	"condo-extractor/internal/textnorm"
)

const unknownAddress = "Unknown"

type Source interface {
	Scan() ([]cache.Entry, error)
	HasPhoto(id string) bool
}

type Aggregator struct {
	src Source
	log *zap.Logger
}

func NewAggregator(src Source, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{src: src, log: log}
}

// Build scans every cached record and returns one point per record that
// has a price. Unreadable records are logged and skipped.
func (a *Aggregator) Build(ctx context.Context) ([]models.FeedDataPoint, error) {
	entries, err := a.src.Scan()
	if err != nil {
		return nil, fmt.Errorf("build feed: %w", err)
	}

	points := make([]models.FeedDataPoint, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.Err != nil {
			a.log.Warn("skipping unreadable cache entry", zap.String("file", e.File), zap.Error(e.Err))
			continue
		}
		if p, ok := a.point(e.Record); ok {
			points = append(points, p)
		}
	}
	return points, nil
}

func (a *Aggregator) point(rec *models.ListingRecord) (models.FeedDataPoint, bool) {
	if rec.Price == nil {
		return models.FeedDataPoint{}, false
	}
	p := models.FeedDataPoint{
		Price:      *rec.Price,
		Assessment: rec.MunicipalAssessmentTotal,
		Address:    unknownAddress,
		Identifier: rec.Identifier,
	}
	if rec.Address != nil && *rec.Address != "" {
		p.Address = *rec.Address
	}
	if rec.Sqft != nil {
		if sqft, ok := textnorm.ParseInt(*rec.Sqft); ok && sqft > 0 {
			perSqft := textnorm.Round(float64(p.Price) / float64(sqft))
			p.Sqft = &sqft
			p.PricePerSqft = &perSqft
		}
	}
	if a.src.HasPhoto(rec.Identifier) {
		path := cache.PhotoFile(rec.Identifier)
		p.PhotoPath = &path
	}
	return p, true
}
