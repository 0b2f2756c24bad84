package resolve

import (
	"github.com/viant/gmetric"
	"github.com/viant/modly/content"
	"github.com/viant/modly/document"
	"github.com/viant/modly/host"
	"github.com/viant/modly/importmap"
	"github.com/viant/modly/metric"
	"github.com/viant/modly/refresh"
	"github.com/viant/modly/shared/logging"
	"github.com/viant/modly/version"
)

//Option customizes an engine instance.
type Option func(e *Engine)

//WithImportMap sets the initial import map.
func WithImportMap(aMap *importmap.ImportMap) Option {
	return func(e *Engine) {
		e.aMap = aMap
	}
}

//WithContentCache sets the persistent fetch cache.
func WithContentCache(cache *content.Service) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

//WithWorkspace sets the virtual file system collaborator materializing
//project files.
func WithWorkspace(workspace host.Workspace) Option {
	return func(e *Engine) {
		e.workspace = workspace
	}
}

//WithDocuments sets the shared parsed document cache.
func WithDocuments(documents *document.Cache) Option {
	return func(e *Engine) {
		e.documents = documents
	}
}

//WithClock sets the version clock shared with the host integration.
func WithClock(clock *version.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

//WithSignal sets the diagnostics refresh signal registry.
func WithSignal(signal *refresh.Signal) Option {
	return func(e *Engine) {
		e.signal = signal
	}
}

//WithMetrics enables operation counters on the supplied gmetric service.
func WithMetrics(metrics *gmetric.Service) Option {
	return func(e *Engine) {
		e.metrics = newEngineMetrics(metric.New(metrics, metricLocation()))
	}
}

//WithLogger sets the engine logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

//WithErrorHandler routes background workspace failures that have no
//synchronous caller to report to.
func WithErrorHandler(handler func(err error)) Option {
	return func(e *Engine) {
		e.onError = handler
	}
}

//WithLocalSchemes replaces the URL schemes treated as project local.
func WithLocalSchemes(schemes ...string) Option {
	return func(e *Engine) {
		e.localSchemes = make(map[string]bool)
		for _, scheme := range schemes {
			e.localSchemes[scheme] = true
		}
	}
}
