package modly

import (
	"context"
	_ "embed"
	"net/http"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/gmetric"
	"github.com/viant/modly/config"
	"github.com/viant/modly/content"
	"github.com/viant/modly/document"
	"github.com/viant/modly/host"
	"github.com/viant/modly/importmap"
	"github.com/viant/modly/metric"
	"github.com/viant/modly/refresh"
	"github.com/viant/modly/resolve"
	"github.com/viant/modly/shared/logging"
	"github.com/viant/modly/version"
	"github.com/viant/modly/warmup"
)

//go:embed Version
var Version string

type metricsLocation struct{}

type (
	//Service wires the resolution subsystems for one workspace: the
	//persistent content cache, the watched import map, the shared document
	//cache, version clock and refresh signal. Engines created through the
	//service share this state; each engine still owns its per session module
	//tables.
	Service struct {
		config    *config.Config
		fs        afs.Service
		logger    logging.Logger
		metrics   *gmetric.Service
		cache     *content.Service
		importMap *importmap.Store
		documents *document.Cache
		clock     *version.Clock
		signal    *refresh.Signal
		workspace host.Workspace
		fetcher   content.Fetcher
		ambient   map[string][]byte
		mux       sync.RWMutex
		engines   map[string]*resolve.Engine
	}
)

//Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

//ContentCache returns the persistent fetch cache.
func (s *Service) ContentCache() *content.Service {
	return s.cache
}

//Documents returns the shared parsed document cache.
func (s *Service) Documents() *document.Cache {
	return s.documents
}

//Clock returns the shared version clock.
func (s *Service) Clock() *version.Clock {
	return s.clock
}

//Signal returns the diagnostics refresh registry.
func (s *Service) Signal() *refresh.Signal {
	return s.signal
}

//Metrics returns the shared metric service.
func (s *Service) Metrics() *gmetric.Service {
	return s.metrics
}

//MetricHandler exposes collected metrics over HTTP under the configured URI.
func (s *Service) MetricHandler() http.Handler {
	return metric.New(s.metrics, reflect.TypeOf(metricsLocation{}).PkgPath()).Handler(s.config.MetricURI)
}

//ImportMap returns the import map currently in use.
func (s *Service) ImportMap() *importmap.ImportMap {
	return s.importMap.ImportMap()
}

//NewEngine creates a resolution engine for one worker session, wired to the
//service state and seeded with the current import map and every configured
//ambient lib.
func (s *Service) NewEngine(ctx context.Context, opts ...resolve.Option) *resolve.Engine {
	options := append([]resolve.Option{
		resolve.WithContentCache(s.cache),
		resolve.WithWorkspace(s.workspace),
		resolve.WithDocuments(s.documents),
		resolve.WithClock(s.clock),
		resolve.WithSignal(s.signal),
		resolve.WithImportMap(s.importMap.ImportMap()),
		resolve.WithLogger(s.logger),
		resolve.WithMetrics(s.metrics),
		resolve.WithLocalSchemes(s.config.LocalSchemes...),
	}, opts...)
	engine := resolve.New(ctx, options...)
	for URL, libContent := range s.ambient {
		engine.Modules().PutAmbient(URL, libContent)
	}
	s.mux.Lock()
	s.engines[engine.ID()] = engine
	s.mux.Unlock()
	return engine
}

//Engine returns a registered engine by session id.
func (s *Service) Engine(id string) *resolve.Engine {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.engines[id]
}

//CloseEngine unregisters a session engine.
func (s *Service) CloseEngine(id string) {
	s.mux.Lock()
	delete(s.engines, id)
	s.mux.Unlock()
}

//SyncChanges reloads the import map when its backing document changed; every
//registered engine picks the fresh map up with an epoch bump.
func (s *Service) SyncChanges(ctx context.Context) error {
	return s.importMap.SyncChanges(ctx)
}

//WatchChanges polls the import map document until the context ends.
func (s *Service) WatchChanges(ctx context.Context) {
	if s.importMap.URL == "" {
		return
	}
	ticker := time.NewTicker(s.config.SyncFrequency())
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.importMap.SyncChanges(ctx); err != nil {
					s.logger.Warn("import map sync failed", "url", s.importMap.URL, "error", err)
				}
			}
		}
	}()
}

//Prefetch populates the content cache with the supplied URLs.
func (s *Service) Prefetch(ctx context.Context, URLs []string, concurrency int) (int, error) {
	return warmup.Prefetch(ctx, s.cache, URLs, concurrency)
}

//applyImportMap pushes a freshly loaded import map to every engine.
func (s *Service) applyImportMap(aMap *importmap.ImportMap) {
	s.mux.RLock()
	engines := make([]*resolve.Engine, 0, len(s.engines))
	for _, engine := range s.engines {
		engines = append(engines, engine)
	}
	s.mux.RUnlock()
	for _, engine := range engines {
		engine.SetImportMap(aMap)
	}
}

//loadAmbientLibs resolves the configured ambient declaration URLs, cache
//first. A failed URL is logged and skipped; ambient libs are additive type
//sources, not session prerequisites.
func (s *Service) loadAmbientLibs(ctx context.Context) {
	for _, URL := range s.config.AmbientLibURLs {
		response, err := s.cache.Query(ctx, URL)
		if err == nil && response == nil {
			response, err = s.cache.Fetch(ctx, URL)
		}
		if err != nil {
			s.logger.Warn("failed to load ambient lib", "url", URL, "error", err)
			continue
		}
		s.ambient[URL] = response.Content
	}
}

//New creates a workspace service for the supplied configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.New(resolve.DefaultCacheURL)
	}
	cfg.Init()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{
		config:  cfg,
		ambient: map[string][]byte{},
		engines: map[string]*resolve.Engine{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.logger == nil {
		ret.logger = logging.New(cfg.LogLevel, os.Stderr)
	}
	if ret.metrics == nil {
		ret.metrics = gmetric.New()
	}
	if ret.documents == nil {
		ret.documents = document.NewCache()
	}
	ret.clock = version.New()
	ret.signal = refresh.New()
	contentOptions := []content.Option{content.WithFS(ret.fs), content.WithLogger(ret.logger)}
	if ret.fetcher != nil {
		contentOptions = append(contentOptions, content.WithFetcher(ret.fetcher))
	} else {
		contentOptions = append(contentOptions, content.WithHTTPClient(&http.Client{Timeout: cfg.NetworkTimeout()}))
	}
	ret.cache = content.New(cfg.CacheURL, contentOptions...)
	if ret.workspace == nil {
		ret.workspace = host.New(ret.fs, ret.documents)
	}
	importMap, err := importmap.NewStore(ctx, ret.fs, cfg.ImportMapURL, cfg.SyncFrequency(), ret.applyImportMap)
	if err != nil {
		return nil, err
	}
	ret.importMap = importMap
	ret.loadAmbientLibs(ctx)
	return ret, nil
}
