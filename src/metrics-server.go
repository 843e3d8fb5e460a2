package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(coll)
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	h.ServeHTTP(w, r)
}

func StartMetricsServer() error {
	http.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metricsHandler(w, r)
	})
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>
		<head>
		<title>NAT Failover Service</title>
		</head>
		<body>
		<h1>NAT Failover Service</h1>
		<a href="/metrics">Metrics</a>
		</body>
		</html>`))
	})
	log.Infof("Metrics server listening on %s", Config.MetricsListen)
	err := http.ListenAndServe(Config.MetricsListen, nil)
	if err != nil {
		return err
	}
	return nil
}
