package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(storeSaves, storeLoads)
}

var (
	storeSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_saves_total",
			Help: "Session store save attempts by success.",
		},
		[]string{"success"},
	)

	storeLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_loads_total",
			Help: "Session store loads by success.",
		},
		[]string{"success"},
	)
)

func IncStoreSave(ok bool) { storeSaves.WithLabelValues(strconv.FormatBool(ok)).Inc() }
func IncStoreLoad(ok bool) { storeLoads.WithLabelValues(strconv.FormatBool(ok)).Inc() }
