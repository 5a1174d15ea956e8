package dashboard

import (
	"context"
	"sync"

	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/models"
)

// Store is the managed table store the hooks read and write.
type Store interface {
	ListThreats(ctx context.Context) ([]models.Threat, error)
	CreateThreat(ctx context.Context, threat models.Threat) (*models.Threat, error)
	UpdateThreat(ctx context.Context, id string, patch models.ThreatPatch) (*models.Threat, error)
	DeleteThreat(ctx context.Context, id string) error
	ListMetrics(ctx context.Context) ([]models.SecurityMetric, error)
	ListThreatActors(ctx context.Context) ([]models.ThreatActor, error)
}

type ToastVariant string

const (
	ToastDefault     ToastVariant = "default"
	ToastDestructive ToastVariant = "destructive"
)

// Toast is a transient user-facing notification.
type Toast struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Variant     ToastVariant `json:"variant"`
}

type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

func successToast(description string) Toast {
	return Toast{Title: "Success", Description: description, Variant: ToastDefault}
}

func errorToast(description string) Toast {
	return Toast{Title: "Error", Description: description, Variant: ToastDestructive}
}

func orDiscard(n Notifier) Notifier {
	if n == nil {
		return NotifierFunc(func(Toast) {})
	}
	return n
}

// ThreatHook mirrors the threats table. Completions apply in the order
// they finish; concurrent fetches are not deduplicated.
type ThreatHook struct {
	store  Store
	notify Notifier

	mu      sync.RWMutex
	threats []models.Threat
	loading bool
}

// NewThreatHook returns a hook in the loading state; call Fetch to
// populate it.
func NewThreatHook(store Store, notifier Notifier) *ThreatHook {
	return &ThreatHook{store: store, notify: orDiscard(notifier), loading: true}
}

// Threats returns a copy of the current snapshot, newest first.
func (h *ThreatHook) Threats() []models.Threat {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.Threat(nil), h.threats...)
}

func (h *ThreatHook) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

// Fetch replaces the snapshot. On failure the snapshot is emptied and a
// single error toast is shown.
func (h *ThreatHook) Fetch(ctx context.Context) error {
	h.setLoading(true)
	defer h.setLoading(false)

	threats, err := h.store.ListThreats(ctx)
	if err != nil {
		logger.Log().WithError(err).Error("Error fetching threats")
		h.mu.Lock()
		h.threats = nil
		h.mu.Unlock()
		h.notify.Notify(errorToast("Failed to fetch threats"))
		return err
	}

	h.mu.Lock()
	h.threats = threats
	h.mu.Unlock()
	return nil
}

// Add inserts a threat and prepends the stored record.
func (h *ThreatHook) Add(ctx context.Context, threat models.Threat) (*models.Threat, error) {
	created, err := h.store.CreateThreat(ctx, threat)
	if err != nil {
		logger.Log().WithError(err).Error("Error adding threat")
		h.notify.Notify(errorToast("Failed to add threat"))
		return nil, err
	}

	h.mu.Lock()
	h.threats = append([]models.Threat{*created}, h.threats...)
	h.mu.Unlock()
	h.notify.Notify(successToast("Threat added successfully"))
	return created, nil
}

// Update patches a threat and replaces the cached copy with the stored one.
func (h *ThreatHook) Update(ctx context.Context, id string, patch models.ThreatPatch) (*models.Threat, error) {
	updated, err := h.store.UpdateThreat(ctx, id, patch)
	if err != nil {
		logger.Log().WithError(err).Error("Error updating threat")
		h.notify.Notify(errorToast("Failed to update threat"))
		return nil, err
	}

	h.mu.Lock()
	for i := range h.threats {
		if h.threats[i].ID == id {
			h.threats[i] = *updated
		}
	}
	h.mu.Unlock()
	h.notify.Notify(successToast("Threat updated successfully"))
	return updated, nil
}

// Delete removes a threat from the store and the snapshot.
func (h *ThreatHook) Delete(ctx context.Context, id string) error {
	if err := h.store.DeleteThreat(ctx, id); err != nil {
		logger.Log().WithError(err).Error("Error deleting threat")
		h.notify.Notify(errorToast("Failed to delete threat"))
		return err
	}

	h.mu.Lock()
	kept := h.threats[:0]
	for _, t := range h.threats {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	h.threats = kept
	h.mu.Unlock()
	h.notify.Notify(successToast("Threat deleted successfully"))
	return nil
}

func (h *ThreatHook) setLoading(v bool) {
	h.mu.Lock()
	h.loading = v
	h.mu.Unlock()
}

// listHook is a read-only fetch-and-hold snapshot.
type listHook[T any] struct {
	fetch   func(context.Context) ([]T, error)
	notify  Notifier
	failure string

	mu      sync.RWMutex
	items   []T
	loading bool
}

func (h *listHook[T]) Fetch(ctx context.Context) error {
	h.mu.Lock()
	h.loading = true
	h.mu.Unlock()

	items, err := h.fetch(ctx)

	h.mu.Lock()
	h.loading = false
	if err != nil {
		h.items = nil
	} else {
		h.items = items
	}
	h.mu.Unlock()

	if err != nil {
		logger.Log().WithError(err).Error(h.failure)
		h.notify.Notify(errorToast(h.failure))
	}
	return err
}

func (h *listHook[T]) snapshot() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]T(nil), h.items...)
}

func (h *listHook[T]) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

// MetricsHook holds security metrics, most recently recorded first.
type MetricsHook struct {
	listHook[models.SecurityMetric]
}

func NewMetricsHook(store Store, notifier Notifier) *MetricsHook {
	return &MetricsHook{listHook[models.SecurityMetric]{
		fetch:   store.ListMetrics,
		notify:  orDiscard(notifier),
		failure: "Failed to fetch security metrics",
		loading: true,
	}}
}

func (h *MetricsHook) Metrics() []models.SecurityMetric { return h.snapshot() }

// ActorsHook holds threat actors, most recently active first.
type ActorsHook struct {
	listHook[models.ThreatActor]
}

func NewActorsHook(store Store, notifier Notifier) *ActorsHook {
	return &ActorsHook{listHook[models.ThreatActor]{
		fetch:   store.ListThreatActors,
		notify:  orDiscard(notifier),
		failure: "Failed to fetch threat actors",
		loading: true,
	}}
}

func (h *ActorsHook) Actors() []models.ThreatActor { return h.snapshot() }

// Board ties the three hooks to one store.
type Board struct {
	Threats *ThreatHook
	Metrics *MetricsHook
	Actors  *ActorsHook
}

func NewBoard(store Store, notifier Notifier) *Board {
	return &Board{
		Threats: NewThreatHook(store, notifier),
		Metrics: NewMetricsHook(store, notifier),
		Actors:  NewActorsHook(store, notifier),
	}
}

// Refresh fetches all three sections concurrently. Each section handles
// its own failure; the first error is returned.
func (b *Board) Refresh(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i, fetch := range []func(context.Context) error{b.Threats.Fetch, b.Metrics.Fetch, b.Actors.Fetch} {
		wg.Add(1)
		go func(i int, fetch func(context.Context) error) {
			defer wg.Done()
			errs[i] = fetch(ctx)
		}(i, fetch)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// View renders the current snapshots with per-section loading flags.
func (b *Board) View() View {
	v := BuildView(b.Threats.Threats(), b.Metrics.Metrics(), b.Actors.Actors())
	v.Loading = Loading{
		Metrics: b.Metrics.Loading(),
		Threats: b.Threats.Loading(),
		Actors:  b.Actors.Loading(),
	}
	return v
}
