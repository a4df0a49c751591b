// Package telemetry holds the Prometheus collectors shared by the relay and price-watch modules.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RelayMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_messages_total",
		Help: "Inbound messages handled by the relay, by result",
	}, []string{"result"})

	RelayAttachments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_attachments_total",
		Help: "Attachments processed by the relay, by result",
	}, []string{"result"})

	DeliveryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_delivery_attempts_total",
		Help: "Outbound text delivery attempts, by path and result",
	}, []string{"path", "result"})

	TranslationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translation_requests_total",
		Help: "Translation provider calls, by provider and result",
	}, []string{"provider", "result"})

	PriceChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricewatch_checks_total",
		Help: "Per-item price checks, by result",
	}, []string{"result"})

	PriceChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricewatch_favorable_changes_total",
		Help: "Favorable price or discount changes detected",
	})

	CatalogRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_refresh_total",
		Help: "Catalog refresh attempts, by result",
	}, []string{"result"})

	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_items",
		Help: "Number of names in the catalog snapshot",
	})

	CleanupDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attachment_cleanup_deleted_total",
		Help: "Downloaded attachment files deleted, by category and trigger",
	}, []string{"category", "trigger"})
)
