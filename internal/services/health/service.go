package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Report is the health payload.
type Report struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
	Storage  string `json:"storage"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB      Pinger
	Storage string
	Timeout time.Duration
}

// NewService constructs a health service. db may be nil when running on
// in-memory repositories.
func NewService(db Pinger, storage string) *Service {
	return &Service{DB: db, Storage: storage, Timeout: 2 * time.Second}
}

// Status pings the database and reports whether the API can serve requests.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{Status: "ok", Service: "trackjob-api", Database: "memory", Storage: s.Storage}
	if s.DB == nil {
		return report
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		report.Status = "degraded"
		report.Database = "down"
		return report
	}
	report.Database = "up"
	return report
}
