package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/metrics"
	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/samples"
)

// FeedSource is the intelligence REST API.
type FeedSource interface {
	FeedThreats(ctx context.Context) ([]models.FeedThreat, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// statusCoder is implemented by errors carrying a non-2xx HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// FeedDashboard fetches the threat feed and stats from the API and falls
// back to the sample dataset when the API cannot serve them.
type FeedDashboard struct {
	source  FeedSource
	samples samples.Provider
	notify  Notifier

	mu           sync.RWMutex
	threats      []models.FeedThreat
	filtered     []models.FeedThreat
	stats        models.Stats
	severity     string
	category     string
	usingSamples bool
}

// NewFeedDashboard starts out showing the sample stats. A nil provider
// uses the built-in dataset; a nil notifier drops toasts.
func NewFeedDashboard(source FeedSource, provider samples.Provider, notifier Notifier) *FeedDashboard {
	if provider == nil {
		provider = samples.Static(samples.Default())
	}
	return &FeedDashboard{
		source:   source,
		samples:  provider,
		notify:   orDiscard(notifier),
		stats:    provider.Current().Stats,
		severity: All,
		category: All,
	}
}

// Load fetches threats then stats. It never fails: a threats error of any
// kind substitutes the sample threats; a stats non-2xx keeps the stats
// already shown and a transport error restores the sample stats. Any
// substitution raises one error toast per call.
func (d *FeedDashboard) Load(ctx context.Context) {
	dataset := d.samples.Current()
	log := logger.Log()

	threats, err := d.source.FeedThreats(ctx)
	fallback := err != nil
	if fallback {
		log.WithError(err).Warn("threat feed unavailable, showing sample data")
		metrics.IncFallback("threats")
		threats = dataset.Threats
	}

	stats, statsErr := d.source.Stats(ctx)

	d.mu.Lock()
	defer func() {
		d.mu.Unlock()
		if fallback {
			d.notify.Notify(errorToast("Failed to fetch live threat data, showing sample data"))
		}
	}()

	d.threats = threats
	d.usingSamples = fallback
	d.refilter()

	var sc statusCoder
	switch {
	case statsErr == nil:
		d.stats = stats
	case errors.As(statsErr, &sc):
		log.WithField("status", sc.HTTPStatus()).Warn("stats request rejected, keeping current stats")
	default:
		log.WithError(statsErr).Warn("stats unavailable, showing sample stats")
		metrics.IncFallback("stats")
		d.stats = dataset.Stats
		fallback = true
	}
}

// SetSeverityFilter selects a severity label, or All.
func (d *FeedDashboard) SetSeverityFilter(severity string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.severity = severity
	d.refilter()
}

// SetCategoryFilter selects a category label, or All.
func (d *FeedDashboard) SetCategoryFilter(category string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.category = category
	d.refilter()
}

func (d *FeedDashboard) refilter() {
	d.filtered = FilterThreats(d.threats, d.severity, d.category)
}

func (d *FeedDashboard) Filters() (severity, category string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.severity, d.category
}

// Threats returns the filtered list.
func (d *FeedDashboard) Threats() []models.FeedThreat {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.FeedThreat(nil), d.filtered...)
}

// AllThreats returns the unfiltered list.
func (d *FeedDashboard) AllThreats() []models.FeedThreat {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.FeedThreat(nil), d.threats...)
}

func (d *FeedDashboard) Stats() models.Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// UsingSamples reports whether the threat list is the sample dataset.
func (d *FeedDashboard) UsingSamples() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.usingSamples
}

// Trend is the static threat trend chart series.
func (d *FeedDashboard) Trend() []samples.TrendPoint {
	return d.samples.Current().Trend
}

// Categories is the static threats-by-category chart series.
func (d *FeedDashboard) Categories() []samples.CategoryCount {
	return d.samples.Current().Categories
}
