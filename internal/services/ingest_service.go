package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/metrics"
	"github.com/cybershield/intel/internal/models"
)

var ErrUnknownSource = errors.New("unknown ingest source")

const minFilterCapacity = 10000

// FeedFetcher returns normalized threats from an upstream feed.
type FeedFetcher interface {
	Last(ctx context.Context, limit int) ([]models.Threat, error)
}

// IngestService pulls feeds into the threats table, skipping CVEs already
// stored. Each run seeds a bloom filter from the stored cve_ids so
// "definitely new" needs no query; positives are confirmed against the
// store.
type IngestService struct {
	db       *gorm.DB
	threats  *ThreatService
	notifier *NotificationService
	limit    int

	mu      sync.Mutex
	sources map[string]FeedFetcher
}

func NewIngestService(db *gorm.DB, threats *ThreatService, ns *NotificationService, limit int) *IngestService {
	return &IngestService{
		db:       db,
		threats:  threats,
		notifier: ns,
		limit:    limit,
		sources:  make(map[string]FeedFetcher),
	}
}

// RegisterSource makes fetcher available under name.
func (s *IngestService) RegisterSource(name string, fetcher FeedFetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[name] = fetcher
}

// Ingest fetches source and stores the new entries. Runs are serialized.
func (s *IngestService) Ingest(ctx context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fetcher, ok := s.sources[source]
	if !ok {
		return 0, ErrUnknownSource
	}

	log := logger.WithFields(map[string]interface{}{"source": source})

	items, err := fetcher.Last(ctx, s.limit)
	if err != nil {
		metrics.IncIngestFailure(source)
		log.WithError(err).Warn("feed fetch failed")
		return 0, err
	}

	seen, err := s.knownCVEs(ctx)
	if err != nil {
		metrics.IncIngestFailure(source)
		return 0, err
	}

	fresh := make([]models.Threat, 0, len(items))
	batch := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.CVEID != "" {
			if _, dup := batch[item.CVEID]; dup {
				continue
			}
			if seen.TestString(item.CVEID) {
				exists, err := s.threats.HasCVE(ctx, item.CVEID)
				if err != nil {
					metrics.IncIngestFailure(source)
					return 0, fmt.Errorf("check cve %s: %w", item.CVEID, err)
				}
				if exists {
					continue
				}
			}
			batch[item.CVEID] = struct{}{}
		}
		fresh = append(fresh, item)
	}

	added, err := s.threats.Insert(ctx, fresh)
	if err != nil {
		metrics.IncIngestFailure(source)
		log.WithError(err).Error("storing ingested threats failed")
		return 0, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&models.IntelFeed{}).
		Where("feed_name = ?", source).
		Update("last_updated", &now).Error; err != nil {
		log.WithError(err).Warn("could not stamp feed last_updated")
	}

	metrics.AddIngested(source, added)
	log.WithField("added", added).Info("feed ingested")

	if added > 0 && s.notifier != nil {
		s.notifier.SendExternal(EventIngest, "Feed Ingested",
			fmt.Sprintf("%d new threats from %s", added, source))
	}
	return added, nil
}

// IngestActive runs Ingest for every active feed with a registered source.
// Errors are logged per feed; the total added is returned.
func (s *IngestService) IngestActive(ctx context.Context) int {
	var feeds []models.IntelFeed
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&feeds).Error; err != nil {
		logger.Log().WithError(err).Error("Failed to list active feeds")
		return 0
	}

	total := 0
	for _, feed := range feeds {
		added, err := s.Ingest(ctx, feed.FeedName)
		if errors.Is(err, ErrUnknownSource) {
			logger.Log().WithField("feed", feed.FeedName).Debug("no ingest adapter for feed")
			continue
		}
		total += added
	}
	return total
}

// Feeds lists the configured intel feeds.
func (s *IngestService) Feeds(ctx context.Context) ([]models.IntelFeed, error) {
	var feeds []models.IntelFeed
	err := s.db.WithContext(ctx).Order("feed_name asc").Find(&feeds).Error
	return feeds, err
}

// knownCVEs builds a filter over every stored cve_id. It is rebuilt per
// run since threats also arrive through the API.
func (s *IngestService) knownCVEs(ctx context.Context) (*bloom.BloomFilter, error) {
	ids, err := s.threats.CVEIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load known cve ids: %w", err)
	}
	capacity := uint(2 * len(ids))
	if capacity < minFilterCapacity {
		capacity = minFilterCapacity
	}
	filter := bloom.NewWithEstimates(capacity, 0.01)
	for _, id := range ids {
		filter.AddString(id)
	}
	return filter, nil
}
