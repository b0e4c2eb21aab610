// Package metrics agrupa las métricas Prometheus del validador. Se definen en un
// paquete aparte para que jwt, identity y http puedan usarlas sin ciclos.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resultados para las etiquetas "result".
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	KeyFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jwtvalidator_key_fetch_total",
		Help: "Llamadas al servicio de claves públicas por operación y resultado",
	}, []string{"op", "result"}) // op: one|all

	KeyFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jwtvalidator_key_fetch_duration_seconds",
		Help:    "Latencia de las llamadas al servicio de claves públicas",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	KeyStaleServedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jwtvalidator_key_stale_served_total",
		Help: "Claves servidas desde la cache tras un error transitorio",
	})

	KeyCacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jwtvalidator_key_cache_size",
		Help: "Cantidad de claves públicas en cache",
	})

	TokenVerifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jwtvalidator_token_verify_total",
		Help: "Verificaciones de tokens por resultado (ok o código de error)",
	}, []string{"result"})

	IdentityClassifiedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jwtvalidator_identity_classified_total",
		Help: "Identidades clasificadas por tipo y subtipo",
	}, []string{"type", "subtype"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jwtvalidator_http_requests_total",
		Help: "Requests HTTP por método, ruta y status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jwtvalidator_http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Register registra las métricas en el registry dado (o el default si es nil).
// Registrar dos veces no es un error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		KeyFetchTotal,
		KeyFetchDuration,
		KeyStaleServedTotal,
		KeyCacheSize,
		TokenVerifyTotal,
		IdentityClassifiedTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
