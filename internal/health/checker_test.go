package health_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sbekbolat/maglink/internal/health"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestChecker(db, replay health.Pinger) (*health.Checker, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return health.NewChecker(db, replay, slog.Default(), reg), reg
}

func TestLiveness_AlwaysUp(t *testing.T) {
	c, _ := newTestChecker(&mockPinger{err: errors.New("db down")}, nil)

	result := c.Liveness(context.Background())
	if result.Status != "up" {
		t.Fatalf("expected status up, got %s", result.Status)
	}
	if result.Checks != nil {
		t.Fatalf("expected no checks, got %v", result.Checks)
	}
}

func TestReadiness_AllUp(t *testing.T) {
	c, reg := newTestChecker(&mockPinger{}, &mockPinger{})

	result := c.Readiness(context.Background())
	if result.Status != "up" {
		t.Fatalf("expected status up, got %s", result.Status)
	}
	for _, dep := range []string{"postgres", "replay_store"} {
		check, ok := result.Checks[dep]
		if !ok {
			t.Fatalf("missing %s check", dep)
		}
		if check.Status != "up" {
			t.Fatalf("expected %s up, got %s", dep, check.Status)
		}
		if g := testGauge(t, reg, dep); g != 1 {
			t.Fatalf("expected %s gauge 1, got %f", dep, g)
		}
	}
}

func TestReadiness_PostgresDown(t *testing.T) {
	c, reg := newTestChecker(&mockPinger{err: errors.New("connection refused")}, &mockPinger{})

	result := c.Readiness(context.Background())
	if result.Status != "down" {
		t.Fatalf("expected status down, got %s", result.Status)
	}
	pg := result.Checks["postgres"]
	if pg.Status != "down" {
		t.Fatalf("expected postgres down, got %s", pg.Status)
	}
	if pg.Error == "" {
		t.Fatal("expected error message")
	}
	if g := testGauge(t, reg, "postgres"); g != 0 {
		t.Fatalf("expected gauge 0, got %f", g)
	}
}

func TestReadiness_ReplayStoreDown_DoesNotFlipReadiness(t *testing.T) {
	c, _ := newTestChecker(&mockPinger{}, &mockPinger{err: errors.New("refused")})

	result := c.Readiness(context.Background())
	if result.Status != "up" {
		t.Fatalf("replay store outage must not flip readiness, got %s", result.Status)
	}
	if result.Checks["replay_store"].Status != "down" {
		t.Fatalf("expected replay_store reported down, got %s", result.Checks["replay_store"].Status)
	}
}

func testGauge(t *testing.T, reg *prometheus.Registry, depLabel string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "maglink_health_check_up" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "dependency" && lp.GetValue() == depLabel {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric maglink_health_check_up{dependency=%q} not found", depLabel)
	return 0
}
