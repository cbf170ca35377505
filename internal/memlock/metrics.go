package memlock

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metered wraps a Locker and records how many bytes are pinned and how each
// lock and unlock call ended.
type Metered struct {
	inner      Locker
	lockedSize prometheus.Gauge
	operations *prometheus.CounterVec
}

// NewMetered registers the locker's collectors with reg and returns the
// decorated locker. Registering twice against the same registry returns the
// collectors already in place.
func NewMetered(inner Locker, reg prometheus.Registerer) (*Metered, error) {
	m := &Metered{
		inner: inner,
		lockedSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "securebuf",
			Name:      "locked_bytes",
			Help:      "Bytes currently pinned in physical memory",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "securebuf",
			Name:      "lock_operations_total",
			Help:      "Memory lock and unlock calls by outcome",
		}, []string{"op", "result"}),
	}

	if err := reg.Register(m.lockedSize); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.lockedSize = are.ExistingCollector.(prometheus.Gauge)
	}
	if err := reg.Register(m.operations); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.operations = are.ExistingCollector.(*prometheus.CounterVec)
	}

	return m, nil
}

func (m *Metered) Lock(b []byte) error {
	if err := m.inner.Lock(b); err != nil {
		m.operations.WithLabelValues("lock", "error").Inc()
		return err
	}
	m.operations.WithLabelValues("lock", "ok").Inc()
	m.lockedSize.Add(float64(len(b)))
	return nil
}

func (m *Metered) Unlock(b []byte) error {
	if err := m.inner.Unlock(b); err != nil {
		m.operations.WithLabelValues("unlock", "error").Inc()
		return err
	}
	m.operations.WithLabelValues("unlock", "ok").Inc()
	m.lockedSize.Sub(float64(len(b)))
	return nil
}
