package httpapi

import (
	"sync/atomic"
	"time"

	"github.com/agenciadigital/accessgate/pkg/models"
)

// Stats counts unlock outcomes since the server started.
type Stats struct {
	magicSuccess   atomic.Int64
	magicFailure   atomic.Int64
	licenseSuccess atomic.Int64
	licenseDemo    atomic.Int64
	licenseFailure atomic.Int64
	rateLimited    atomic.Int64

	started time.Time
	now     func() time.Time
}

// NewStats starts the uptime clock at now().
func NewStats(now func() time.Time) *Stats {
	return &Stats{started: now(), now: now}
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() models.MetricsResponse {
	return models.MetricsResponse{
		MagicSuccess:   s.magicSuccess.Load(),
		MagicFailure:   s.magicFailure.Load(),
		LicenseSuccess: s.licenseSuccess.Load(),
		LicenseDemo:    s.licenseDemo.Load(),
		LicenseFailure: s.licenseFailure.Load(),
		RateLimited:    s.rateLimited.Load(),
		UptimeSeconds:  int64(s.now().Sub(s.started).Seconds()),
	}
}
