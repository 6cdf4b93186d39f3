package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts domain events. A nil *Metrics is valid and records nothing.
type Metrics struct {
	sessionsStarted  *prometheus.CounterVec
	sessionsFinished prometheus.Counter
	sessionScore     prometheus.Histogram
	invitations      *prometheus.CounterVec
	friendsRemoved   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sessionsStarted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_sessions_started_total",
				Help: "Game sessions started, split by whether a pending session was resumed",
			},
			[]string{"resumed"},
		),
		sessionsFinished: f.NewCounter(prometheus.CounterOpts{
			Name: "game_sessions_finished_total",
			Help: "Game sessions finalized",
		}),
		sessionScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "game_session_score",
			Help:    "Score awarded when a session is finalized",
			Buckets: []float64{-100, -40, -20, -8, 0, 5, 10, 20, 40, 60, 80, 100, 200},
		}),
		invitations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "friend_invitations_total",
				Help: "Friend invitation transitions by outcome",
			},
			[]string{"outcome"},
		),
		friendsRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "friendships_removed_total",
			Help: "Friendships removed",
		}),
	}
}

func (m *Metrics) sessionStarted(resumed bool) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(strconv.FormatBool(resumed)).Inc()
}

func (m *Metrics) sessionFinished(score int) {
	if m == nil {
		return
	}
	m.sessionsFinished.Inc()
	m.sessionScore.Observe(float64(score))
}

func (m *Metrics) invitation(outcome string) {
	if m == nil {
		return
	}
	m.invitations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) friendRemoved() {
	if m == nil {
		return
	}
	m.friendsRemoved.Inc()
}
