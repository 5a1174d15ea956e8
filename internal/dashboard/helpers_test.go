package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cybershield/intel/internal/models"
)

var errStore = errors.New("store unavailable")

// memStore is an in-memory Store with per-operation failure switches.
type memStore struct {
	mu      sync.Mutex
	threats []models.Threat
	metrics []models.SecurityMetric
	actors  []models.ThreatActor
	seq     int

	failList, failCreate, failUpdate, failDelete bool
	failMetrics, failActors                      bool
}

func (s *memStore) ListThreats(ctx context.Context) ([]models.Threat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, errStore
	}
	return append([]models.Threat(nil), s.threats...), nil
}

func (s *memStore) CreateThreat(ctx context.Context, t models.Threat) (*models.Threat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return nil, errStore
	}
	s.seq++
	t.ID = fmt.Sprintf("t%d", s.seq)
	t.ApplyDefaults()
	t.CreatedAt = time.Now()
	s.threats = append([]models.Threat{t}, s.threats...)
	return &t, nil
}

func (s *memStore) UpdateThreat(ctx context.Context, id string, patch models.ThreatPatch) (*models.Threat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate {
		return nil, errStore
	}
	for i := range s.threats {
		if s.threats[i].ID == id {
			patch.Apply(&s.threats[i])
			out := s.threats[i]
			return &out, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *memStore) DeleteThreat(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errStore
	}
	for i := range s.threats {
		if s.threats[i].ID == id {
			s.threats = append(s.threats[:i], s.threats[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (s *memStore) ListMetrics(ctx context.Context) ([]models.SecurityMetric, error) {
	if s.failMetrics {
		return nil, errStore
	}
	return s.metrics, nil
}

func (s *memStore) ListThreatActors(ctx context.Context) ([]models.ThreatActor, error) {
	if s.failActors {
		return nil, errStore
	}
	return s.actors, nil
}

type toastRecorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *toastRecorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *toastRecorder) All() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}
