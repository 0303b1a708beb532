package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	BookingsTotal       prometheus.Counter
	BookingConflicts    *prometheus.CounterVec
	AppointmentsDeleted prometheus.Counter
	PrescriptionUpserts prometheus.Counter
	LoginsTotal         *prometheus.CounterVec
	RegistrationsTotal  prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BookingsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Total number of successfully booked appointments",
		}),
		BookingConflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected by the scheduling rules",
		}, []string{"reason"}),
		AppointmentsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_cancelled_total",
			Help:      "Total number of appointments cancelled by an admin",
		}),
		PrescriptionUpserts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prescription_upserts_total",
			Help:      "Total number of prescription create-or-update operations",
		}),
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by principal kind and outcome",
		}, []string{"kind", "outcome"}),
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of registered patients",
		}),
	}
}

// Booking conflict reasons.
const (
	ConflictReasonDailyCap = "daily_cap"
	ConflictReasonOverlap  = "overlap"
)
