package resolve

import (
	"reflect"

	"github.com/viant/modly/metric"
)

type metricsLocation struct{}

func metricLocation() string {
	return reflect.TypeOf(metricsLocation{}).PkgPath()
}

//engineMetrics counts the engine operations: synchronous resolutions,
//background module acquisitions and workspace opens.
type engineMetrics struct {
	resolve *metric.CounterAdapter
	fetch   *metric.CounterAdapter
	open    *metric.CounterAdapter
}

func newEngineMetrics(service *metric.Service) *engineMetrics {
	return &engineMetrics{
		resolve: service.Operation("resolve", "module specifier resolution"),
		fetch:   service.Operation("fetch", "remote module acquisition"),
		open:    service.Operation("open", "workspace file materialization"),
	}
}
