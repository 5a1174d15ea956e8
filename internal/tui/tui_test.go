package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	ui "github.com/gizak/termui/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybershield/intel/internal/dashboard"
	"github.com/cybershield/intel/internal/models"
)

type downFeed struct{}

func (downFeed) FeedThreats(ctx context.Context) ([]models.FeedThreat, error) {
	return nil, errors.New("down")
}

func (downFeed) Stats(ctx context.Context) (models.Stats, error) {
	return models.Stats{}, errors.New("down")
}

// threatStore is an in-memory dashboard.Store.
type threatStore struct {
	mu        sync.Mutex
	threats   []models.Threat
	actors    []models.ThreatActor
	failWrite bool
	next      int
}

func (s *threatStore) ListThreats(ctx context.Context) ([]models.Threat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Threat(nil), s.threats...), nil
}

func (s *threatStore) CreateThreat(ctx context.Context, t models.Threat) (*models.Threat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return nil, errors.New("write rejected")
	}
	s.next++
	t.ID = "t" + string(rune('0'+s.next))
	t.ApplyDefaults()
	s.threats = append([]models.Threat{t}, s.threats...)
	return &t, nil
}

func (s *threatStore) UpdateThreat(ctx context.Context, id string, patch models.ThreatPatch) (*models.Threat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return nil, errors.New("write rejected")
	}
	for i := range s.threats {
		if s.threats[i].ID == id {
			if patch.Title != nil {
				s.threats[i].Title = *patch.Title
			}
			cp := s.threats[i]
			return &cp, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *threatStore) DeleteThreat(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errors.New("write rejected")
	}
	kept := s.threats[:0]
	for _, t := range s.threats {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.threats = kept
	return nil
}

func (s *threatStore) ListMetrics(ctx context.Context) ([]models.SecurityMetric, error) {
	return nil, nil
}

func (s *threatStore) ListThreatActors(ctx context.Context) ([]models.ThreatActor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ThreatActor(nil), s.actors...), nil
}

func newTestApp(t *testing.T, store *threatStore) *App {
	t.Helper()
	status := NewStatusLine()
	return NewApp(
		dashboard.NewFeedDashboard(downFeed{}, nil, status),
		dashboard.NewBoard(store, status),
		dashboard.NewPlatform(nil),
		status,
	)
}

func typeKeys(ctx context.Context, a *App, keys ...string) {
	for _, k := range keys {
		a.handleKey(ctx, k)
	}
}

func TestThreatRows(t *testing.T) {
	long := strings.Repeat("x", 200)
	rows := ThreatRows([]models.FeedThreat{{Severity: "High", PriorityScore: 88, Category: "Phishing", Title: "t", Description: long}})
	require.Len(t, rows, 2)
	assert.Equal(t, "Severity", rows[0][0])
	assert.Equal(t, "88", rows[1][1])
	assert.LessOrEqual(t, len(rows[1][4]), descriptionWidth)

	empty := ThreatRows(nil)
	require.Len(t, empty, 2)
	assert.Contains(t, empty[1][3], "No threats")
}

func TestStatsLines(t *testing.T) {
	lines := StatsLines(models.Stats{TotalThreats: 24, CriticalThreats: 9, ActiveIncidents: 3, AvgResponseTime: "2.4h"})
	assert.Equal(t, []string{"Total: 24", "Critical: 9", "Active: 3", "Avg Response: 2.4h"}, lines)
}

func TestDashboardSeries(t *testing.T) {
	d := dashboard.NewFeedDashboard(downFeed{}, nil, nil)
	d.Load(context.Background())

	assert.Contains(t, Header(d), "sample data")
	assert.Contains(t, Header(d), "severity: All")

	data, labels := TrendSeries(d)
	require.Len(t, data, 2)
	assert.Equal(t, "Nov 10", labels[0])
	assert.Equal(t, 26.0, data[0][5])
	assert.Equal(t, 9.0, data[1][5])

	bars, names := CategoryBars(d)
	assert.Equal(t, []float64{12, 8, 6, 4, 7}, bars)
	assert.Equal(t, "Data Breach", names[4])
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, ui.ColorRed, SeverityColor("Critical"))
	assert.Equal(t, ui.ColorGreen, SeverityColor("Low"))
	assert.Equal(t, ui.ColorGreen, SeverityColor("Unknown"))
}

func TestBadgeColor(t *testing.T) {
	assert.Equal(t, ui.ColorRed, BadgeColor(dashboard.SeverityBadge("critical")))
	assert.Equal(t, ui.ColorYellow, BadgeColor(dashboard.SeverityBadge("medium")))
	assert.Equal(t, ui.ColorGreen, BadgeColor(dashboard.SeverityBadge("bogus")))
}

func TestStatusLine(t *testing.T) {
	s := NewStatusLine()
	assert.Empty(t, s.Text())

	s.Notify(dashboard.Toast{Title: "Error", Description: "first", Variant: dashboard.ToastDestructive})
	s.Notify(dashboard.Toast{Title: "Success", Description: "Threat added successfully", Variant: dashboard.ToastDefault})

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, "Threat added successfully", last.Description)
	assert.Equal(t, "[Success: Threat added successfully](fg:green)", s.Text())

	select {
	case <-s.Changed():
	default:
		t.Fatal("expected a change signal")
	}
}

func TestToastLine(t *testing.T) {
	line := ToastLine(dashboard.Toast{Title: "Error", Description: "Failed to fetch threats", Variant: dashboard.ToastDestructive})
	assert.Equal(t, "[Error: Failed to fetch threats](fg:red)", line)
}

func TestTileLinesAndCards(t *testing.T) {
	loading := dashboard.View{Loading: dashboard.Loading{Threats: true, Actors: true}}
	for _, line := range TileLines(loading) {
		assert.Equal(t, skeleton, line)
	}
	rows := ThreatCardRows(loading, 0)
	require.Len(t, rows, skeletonRows+1)
	assert.Equal(t, skeleton, rows[1][1])
	assert.Equal(t, []string{skeleton, skeleton, skeleton}, ActorLines(loading))

	empty := dashboard.BuildView(nil, nil, nil)
	rows = ThreatCardRows(empty, 0)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1][3], "No threats recorded")

	page := dashboard.BuildView([]models.Threat{
		{ID: "a", Title: "Log4Shell", Severity: models.SeverityCritical, MitigationStatus: models.StatusUnmitigated},
		{ID: "b", Title: "Phish kit", Severity: models.SeverityLow, MitigationStatus: models.StatusMitigated},
	}, nil, []models.ThreatActor{{Name: "APT29", OriginCountry: "Russia", ActivityStatus: models.ActivityActive}})

	tiles := TileLines(page)
	require.Len(t, tiles, 4)
	assert.Equal(t, "Active Threats: 2  ▲ 1 critical", tiles[0])

	rows = ThreatCardRows(page, 1)
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[1][0])
	assert.Equal(t, ">", rows[2][0])
	assert.Equal(t, "CRITICAL", rows[1][1])
	assert.Equal(t, "Log4Shell", rows[1][3])

	actors := ActorLines(page)
	assert.Equal(t, "[●](fg:red) APT29  Russia  "+models.ActivityActive, actors[0])
	assert.Equal(t, "Mitigation rate: 50.0%", actors[len(actors)-1])
}

func TestFormEditor(t *testing.T) {
	form := dashboard.NewThreatForm(nil)
	e := NewFormEditor(form)

	for _, k := range []string{"L", "o", "g", "<Space>", "4", "x", "<Backspace>", "j"} {
		assert.False(t, e.Key(k))
	}
	assert.Equal(t, "Log 4j", form.Fields().Title)

	e.Key("<Tab>")
	e.Key("<Tab>")
	assert.Equal(t, fieldSeverity, e.Focus())
	e.Key("<Left>")
	assert.Equal(t, models.SeverityHigh, form.Fields().Severity)
	e.Key("z")
	assert.Equal(t, models.SeverityHigh, form.Fields().Severity, "choice fields ignore typing")

	e.Key("<Up>")
	e.Key("<Up>")
	e.Key("<Up>")
	assert.Equal(t, fieldStatus, e.Focus(), "focus wraps backwards")
	e.Key("<Up>")
	for _, k := range []string{"1", "2", "x", "0"} {
		e.Key(k)
	}
	assert.Equal(t, 120, form.Fields().AffectedSystems)

	lines := e.Lines()
	assert.Equal(t, "> Affected Systems: 120", lines[fieldAffected])
	assert.True(t, e.Key("<Enter>"))
}

func TestApp_ManagedStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := &threatStore{threats: []models.Threat{{ID: "seed", Title: "Seeded", Severity: models.SeverityMedium}}}
	a := newTestApp(t, store)

	typeKeys(ctx, a, "<Tab>")
	require.Equal(t, ScreenManaged, a.Screen())
	assert.True(t, a.Board.View().Loading.Threats, "skeletons until the first refresh")
	require.Equal(t, cmdRefreshBoard, a.handleKey(ctx, "r"))
	require.NoError(t, a.Board.Refresh(ctx))

	typeKeys(ctx, a, "a")
	require.NotNil(t, a.Editor())
	assert.Equal(t, "Add New Threat", a.Editor().Form().Title())
	typeKeys(ctx, a, "q", "<Enter>")
	assert.Nil(t, a.Editor())
	assert.Equal(t, "[Success: Threat added successfully](fg:green)", a.Status.Text())

	threats := a.Board.Threats.Threats()
	require.Len(t, threats, 2)
	assert.Equal(t, "q", threats[0].Title, "q types into the form instead of quitting")

	typeKeys(ctx, a, "j", "e")
	require.NotNil(t, a.Editor())
	assert.Equal(t, "Edit Threat", a.Editor().Form().Title())
	typeKeys(ctx, a, "!", "<Enter>")
	assert.Equal(t, "Seeded!", a.Board.Threats.Threats()[1].Title)

	typeKeys(ctx, a, "d")
	require.Len(t, a.Board.Threats.Threats(), 1)
	assert.Equal(t, 0, a.Selected())
	assert.Equal(t, "[Success: Threat deleted successfully](fg:green)", a.Status.Text())

	store.failWrite = true
	typeKeys(ctx, a, "d")
	assert.Len(t, a.Board.Threats.Threats(), 1)
	assert.Equal(t, "[Error: Failed to delete threat](fg:red)", a.Status.Text())

	typeKeys(ctx, a, "a", "x", "<Enter>")
	require.NotNil(t, a.Editor(), "a failed save keeps the form open")
	assert.Equal(t, "x", a.Editor().Form().Fields().Title)
	typeKeys(ctx, a, "<Escape>")
	assert.Nil(t, a.Editor())

	assert.Equal(t, cmdQuit, a.handleKey(ctx, "q"))
}

func TestApp_FeedFallbackToast(t *testing.T) {
	a := newTestApp(t, &threatStore{})
	a.Feed.Load(context.Background())

	assert.Equal(t, ScreenFeed, a.Screen())
	assert.True(t, a.Feed.UsingSamples())
	assert.Contains(t, a.Status.Text(), "fg:red")

	typeKeys(context.Background(), a, "s")
	sev, _ := a.Feed.Filters()
	assert.Equal(t, "Critical", sev)
}

func TestApp_Platform(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, &threatStore{})
	typeKeys(ctx, a, "<Tab>", "<Tab>")
	require.Equal(t, ScreenPlatform, a.Screen())
	assert.True(t, strings.HasPrefix(PlatformTabBar(a.Platform), "[Overview]"))

	assert.Len(t, HighlightLines(a.Platform), 3)
	rows := RecentThreatRows(a.Platform)
	assert.Equal(t, "CVE-2024-3400", rows[1][0])
	data, labels := VulnBars(a.Platform)
	assert.Len(t, data, 4)
	assert.Len(t, labels, 4)
	_, names := ActorBars(a.Platform)
	assert.Equal(t, "LockBit", names[3])

	typeKeys(ctx, a, "<Right>")
	assert.Equal(t, dashboard.TabAnalysis, a.Platform.ActiveTab())
	typeKeys(ctx, a, "C", "V", "E", "-", "1", "<Backspace>", "2")
	assert.Equal(t, "CVE-2", a.Platform.Query())
	assert.Equal(t, dashboard.AnalysisPlaceholder, AnalysisLines(a.Platform, "")[4])

	typeKeys(ctx, a, "<Enter>")
	assert.Equal(t, "CVE: CVE-2_", AnalysisLines(a.Platform, a.analysis)[0])

	typeKeys(ctx, a, "<Left>")
	assert.Equal(t, dashboard.TabOverview, a.Platform.ActiveTab())
	typeKeys(ctx, a, "<Tab>")
	assert.Equal(t, ScreenFeed, a.Screen())
}

func TestScreenBar(t *testing.T) {
	assert.Equal(t, "Threat Feed  [Managed Store]  Platform  (Tab switch, q quit)", ScreenBar(ScreenManaged))
}
