package dashboard

import (
	"context"

	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/services"
)

// ServiceStore serves the hooks straight from the service layer, for
// in-process dashboards.
type ServiceStore struct {
	Threats *services.ThreatService
	Actors  *services.ThreatActorService
	Metrics *services.MetricService
}

func (s ServiceStore) ListThreats(ctx context.Context) ([]models.Threat, error) {
	return s.Threats.List(ctx)
}

func (s ServiceStore) CreateThreat(ctx context.Context, threat models.Threat) (*models.Threat, error) {
	if err := s.Threats.Create(ctx, &threat); err != nil {
		return nil, err
	}
	return &threat, nil
}

func (s ServiceStore) UpdateThreat(ctx context.Context, id string, patch models.ThreatPatch) (*models.Threat, error) {
	return s.Threats.Update(ctx, id, patch)
}

func (s ServiceStore) DeleteThreat(ctx context.Context, id string) error {
	return s.Threats.Delete(ctx, id)
}

func (s ServiceStore) ListMetrics(ctx context.Context) ([]models.SecurityMetric, error) {
	return s.Metrics.List(ctx)
}

func (s ServiceStore) ListThreatActors(ctx context.Context) ([]models.ThreatActor, error) {
	return s.Actors.List(ctx)
}
