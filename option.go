package modly

import (
	"github.com/viant/afs"
	"github.com/viant/gmetric"
	"github.com/viant/modly/content"
	"github.com/viant/modly/document"
	"github.com/viant/modly/host"
	"github.com/viant/modly/shared/logging"
)

//Option customizes the workspace service.
type Option func(s *Service)

//WithFS sets the file system service backing cache, config and workspace.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

//WithLogger sets the service logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

//WithMetrics sets the shared metric service.
func WithMetrics(metrics *gmetric.Service) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

//WithWorkspace replaces the virtual file system collaborator.
func WithWorkspace(workspace host.Workspace) Option {
	return func(s *Service) {
		s.workspace = workspace
	}
}

//WithDocuments sets the shared parsed document cache.
func WithDocuments(documents *document.Cache) Option {
	return func(s *Service) {
		s.documents = documents
	}
}

//WithFetcher replaces the network fetcher, test usage.
func WithFetcher(fetcher content.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = fetcher
	}
}
