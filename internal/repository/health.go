package repository

import (
	"context"
	"time"
)

// HealthSummary reports database reachability plus core table row counts,
// for the readiness endpoint.
type HealthSummary struct {
	Status     string
	DBName     string
	DBVersion  string
	ServerTime time.Time
	Tables     []TableCount
}

type TableCount struct {
	Table string
	Count int64
}

var coreTables = []string{
	"app_users",
	"students",
	"staff",
	"parents",
	"enrollments",
	"attendance",
	"fee_heads",
	"student_fees",
	"payments",
	"notifications",
}

func (s *Store) GetHealthSummary(ctx context.Context) (HealthSummary, error) {
	summary := HealthSummary{Status: "ok"}

	var ok int
	if err := s.pool.QueryRow(ctx, `SELECT 1`).Scan(&ok); err != nil || ok != 1 {
		summary.Status = "degraded"
		return summary, err
	}

	if err := s.pool.QueryRow(ctx, `
		SELECT current_database(), version(), now()
	`).Scan(&summary.DBName, &summary.DBVersion, &summary.ServerTime); err != nil {
		return summary, err
	}

	for _, table := range coreTables {
		var count int64
		// Table names come from the fixed list above, never from input.
		if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
			return summary, err
		}
		summary.Tables = append(summary.Tables, TableCount{Table: table, Count: count})
	}
	return summary, nil
}
