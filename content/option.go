package content

import (
	"net/http"

	"github.com/viant/afs"
	"github.com/viant/modly/shared/logging"
)

//Option customizes the cache service.
type Option func(s *Service)

//WithFS sets the file system service backing the store.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

//WithFetcher replaces the network fetcher.
func WithFetcher(fetcher Fetcher) Option {
	return func(s *Service) {
		s.fetcher = fetcher
	}
}

//WithHTTPClient sets the client used by the default network fetcher.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

//WithLogger sets the service logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
