package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsTotal counts send attempts by transport and outcome
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobwatch_notifications_total",
		Help: "Notification send attempts by transport and outcome",
	}, []string{"transport", "result"})

	// RecipientsRefused counts recipients rejected by the messaging server
	RecipientsRefused = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobwatch_recipients_refused_total",
		Help: "Recipients refused by the messaging server",
	})
)
