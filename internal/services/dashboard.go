package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"food-dashboard/internal/models"
)

const reloadTimeout = 30 * time.Second

// Dashboard serves the three order views. Views are computed on every call
// from the current table; the table itself is re-read whenever the source
// file's modification time changes.
type Dashboard struct {
	mu      sync.RWMutex
	table   *Table
	csvPath string
	modTime time.Time

	reloads     singleflight.Group
	reloadCount atomic.Int64
	logger      *slog.Logger
	tracer      trace.Tracer
}

func NewDashboard() *Dashboard {
	empty, _ := TableFromRecords([]string{models.ColumnAge, models.ColumnOrderDate, models.ColumnCity}, nil)
	return &Dashboard{
		table:  empty,
		logger: slog.Default(),
		tracer: otel.Tracer("food-dashboard/services"),
	}
}

// SetTable replaces the table and stops following the source file.
func (d *Dashboard) SetTable(t *Table) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.table = t
	d.csvPath = ""
	d.modTime = time.Time{}
}

// LoadFromCSV performs the initial load. Later renders reload from the same
// path when it changes on disk.
func (d *Dashboard) LoadFromCSV(ctx context.Context, filename string) error {
	ctx, span := d.tracer.Start(ctx, "dashboard.load",
		trace.WithAttributes(attribute.String("csv.path", filename)))
	defer span.End()

	info, err := os.Stat(filename)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stat csv")
		return fmt.Errorf("stat csv: %w", err)
	}

	start := time.Now()
	d.logger.Info("loading CSV file", "filename", filename)

	table, err := LoadTable(ctx, filename)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load csv")
		return fmt.Errorf("load csv: %w", err)
	}

	d.mu.Lock()
	d.table = table
	d.csvPath = filename
	d.modTime = info.ModTime()
	d.mu.Unlock()

	span.SetAttributes(attribute.Int("csv.rows", table.Len()))
	d.logger.Info("csv load complete",
		"records", table.Len(),
		"columns", len(table.Columns()),
		"duration", time.Since(start))

	return nil
}

func (d *Dashboard) current(ctx context.Context) (*Table, error) {
	d.mu.RLock()
	table, path, modTime := d.table, d.csvPath, d.modTime
	d.mu.RUnlock()

	if path == "" {
		return table, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat csv: %w", err)
	}
	if info.ModTime().Equal(modTime) {
		return table, nil
	}

	v, err, _ := d.reloads.Do(path, func() (any, error) {
		d.logger.Info("source file changed, reloading", "filename", path, "mod_time", info.ModTime())

		// Shared by every waiter, so it must outlive the caller that started it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
		defer cancel()

		if err := d.LoadFromCSV(loadCtx, path); err != nil {
			return nil, err
		}
		d.reloadCount.Add(1)

		d.mu.RLock()
		defer d.mu.RUnlock()
		return d.table, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reload csv: %w", err)
	}
	return v.(*Table), nil
}

// View computes all three views from one table snapshot.
func (d *Dashboard) View(ctx context.Context) (models.DashboardView, error) {
	ctx, span := d.tracer.Start(ctx, "dashboard.view")
	defer span.End()

	table, err := d.current(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "current table")
		return models.DashboardView{}, err
	}

	ages, err := AgeDistribution(table, models.ColumnAge)
	if err != nil {
		return models.DashboardView{}, fmt.Errorf("age distribution: %w", err)
	}

	orders, err := OrdersOverTime(table, models.ColumnOrderDate)
	if err != nil {
		return models.DashboardView{}, fmt.Errorf("orders over time: %w", err)
	}

	cities, err := TopCities(table, models.ColumnCity)
	if err != nil {
		return models.DashboardView{}, fmt.Errorf("top cities: %w", err)
	}

	span.SetAttributes(
		attribute.Int("table.rows", table.Len()),
		attribute.Int("view.dates", len(orders)),
		attribute.Int("view.cities", len(cities)),
	)

	return models.DashboardView{
		AgeGroups:    ages,
		OrdersByDate: orders,
		TopCities:    cities,
		MaxCityCount: MaxCount(cities),
		RecordCount:  table.Len(),
		LoadedAt:     table.LoadedAt(),
	}, nil
}

func (d *Dashboard) AgeGroups(ctx context.Context) ([]models.AgeGroupCount, error) {
	table, err := d.current(ctx)
	if err != nil {
		return nil, err
	}
	return AgeDistribution(table, models.ColumnAge)
}

func (d *Dashboard) OrdersOverTime(ctx context.Context) ([]models.DailyOrders, error) {
	table, err := d.current(ctx)
	if err != nil {
		return nil, err
	}
	return OrdersOverTime(table, models.ColumnOrderDate)
}

func (d *Dashboard) TopCities(ctx context.Context) ([]models.CityOrders, error) {
	table, err := d.current(ctx)
	if err != nil {
		return nil, err
	}
	return TopCities(table, models.ColumnCity)
}

// Stats reports on the loaded table for the admin endpoint.
func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]any{
		"record_count": d.table.Len(),
		"columns":      d.table.Columns(),
		"source":       d.csvPath,
		"loaded_at":    d.table.LoadedAt(),
		"reloads":      d.reloadCount.Load(),
	}
}
