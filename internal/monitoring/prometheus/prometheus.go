// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime           *prometheus.HistogramVec
	dependencyAvailability *prometheus.GaugeVec
	events                 *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(labels map[string]string, value float64) error {
	h, err := m.responseTime.GetMetricWith(m.withService(labels))
	if err != nil {
		return err
	}

	h.Observe(value)
	return nil
}

func (m *Monitor) SetDependencyAvailability(labels map[string]string, value float64) error {
	g, err := m.dependencyAvailability.GetMetricWith(m.withService(labels))
	if err != nil {
		return err
	}

	g.Set(value)
	return nil
}

// IncrementEventCount counts a handled event, labelled by stage, kind and outcome.
func (m *Monitor) IncrementEventCount(labels map[string]string) error {
	c, err := m.events.GetMetricWith(m.withService(labels))
	if err != nil {
		return err
	}

	c.Inc()
	return nil
}

func (m *Monitor) withService(labels map[string]string) prometheus.Labels {
	l := prometheus.Labels{"service": m.service}
	for k, v := range labels {
		l[k] = v
	}
	return l
}

func (m *Monitor) register(r prometheus.Registerer) {
	collectors := map[string]prometheus.Collector{
		"http_response_time_seconds": m.responseTime,
		"dependency_available":       m.dependencyAvailability,
		"directory_events_total":     m.events,
	}

	for name, c := range collectors {
		if err := r.Register(c); err != nil {
			are := prometheus.AlreadyRegisteredError{}
			if errors.As(err, &are) {
				m.logger.Debugf("metric %s already registered", name)
				continue
			}
			m.logger.Errorf("metric %s could not be registered: %v", name, err)
		}
	}
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	return NewMonitorWithRegisterer(service, prometheus.DefaultRegisterer, logger)
}

func NewMonitorWithRegisterer(service string, r prometheus.Registerer, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_time_seconds",
			Help: "http_response_time_seconds",
		},
		[]string{"route", "status", "service"},
	)

	m.dependencyAvailability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_available",
			Help: "dependency_available",
		},
		[]string{"component", "service"},
	)

	m.events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_events_total",
			Help: "directory events handled per stage, kind and outcome",
		},
		[]string{"stage", "kind", "outcome", "service"},
	)

	m.register(r)

	return m
}
