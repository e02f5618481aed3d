package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions — мутации выбора по операциям.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_selection_transitions_total",
		Help: "Selection state machine transitions by operation.",
	}, []string{"op"})

	// OverrideUpdates — записи/сбросы кастомных картинок.
	OverrideUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_style_override_updates_total",
		Help: "Custom style image updates by operation and result.",
	}, []string{"op", "result"})

	// OrdersConfirmed — подтверждённые заказы.
	OrdersConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_orders_confirmed_total",
		Help: "Confirmed customer orders.",
	})
)
