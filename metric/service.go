package metric

import (
	"net/http"
	"time"

	"github.com/viant/gmetric"
	gprovider "github.com/viant/gmetric/provider"
)

type (
	//Service registers operation counters with a shared gmetric service. A
	//nil service hands out nil tolerant adapters, so instrumented code never
	//checks whether metrics were configured.
	Service struct {
		metrics  *gmetric.Service
		location string
	}
)

//Metrics returns the underlying gmetric service.
func (s *Service) Metrics() *gmetric.Service {
	if s == nil {
		return nil
	}
	return s.metrics
}

//Operation returns the named operation counter, creating it on first use.
func (s *Service) Operation(name, description string) *CounterAdapter {
	if s == nil || s.metrics == nil {
		return NewCounter(nil)
	}
	cnt := s.metrics.LookupOperation(name)
	if cnt == nil {
		cnt = s.metrics.MultiOperationCounter(s.location, name, description, time.Millisecond, time.Minute, 2, gprovider.NewBasic())
	}
	return NewCounter(cnt)
}

//Handler exposes collected metrics over HTTP under the supplied URI.
func (s *Service) Handler(URI string) http.Handler {
	return gmetric.NewHandler(URI, s.Metrics())
}

//New creates a metric service; metrics may be nil to disable collection.
func New(metrics *gmetric.Service, location string) *Service {
	return &Service{metrics: metrics, location: location}
}
