package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindOriginal   = "original"
	kindDerivative = "derivative"

	resultOK    = "ok"
	resultError = "error"

	sourceRemote = "remote"
	sourceLocal  = "local"
)

var (
	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetstore_saves_total",
			Help: "Save pipeline runs by result.",
		},
		[]string{"result"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetstore_uploads_total",
			Help: "Individual object uploads by kind (original, derivative) and result.",
		},
		[]string{"kind", "result"},
	)

	readsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetstore_reads_total",
			Help: "Read calls by the source that answered them.",
		},
		[]string{"source"},
	)

	serveFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assetstore_serve_fallbacks_total",
			Help: "Serve requests handed to the local fallback after a remote error.",
		},
	)
)
