package content

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/francoispqt/gojay"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/modly/shared"
	"github.com/viant/modly/shared/logging"
)

type (
	//Service is a persistent, content addressed fetch cache. Fetch always
	//goes to the network and persists the outcome write through; Query reads
	//the store only, following a persisted redirect marker as its one path
	//back to the network. The service performs no retries; retry policy
	//belongs to the caller.
	Service struct {
		baseURL string
		fs      afs.Service
		fetcher Fetcher
		client  *http.Client
		logger  logging.Logger
		once    sync.Once
		initErr error
	}
)

//BaseURL returns the store location.
func (s *Service) BaseURL() string {
	return s.baseURL
}

//Fetch issues a network request for the supplied URL and persists the
//outcome before returning it. A redirected fetch additionally stores a
//marker entry under the original URL whose location header points at the
//final URL, so later lookups can short circuit.
func (s *Service) Fetch(ctx context.Context, URL string) (*Response, error) {
	if err := s.ensureStore(ctx); err != nil {
		return nil, err
	}
	response, err := s.fetcher.Fetch(ctx, URL)
	if err != nil {
		return nil, err
	}
	entry := &Entry{URL: response.URL, Content: response.Content, Headers: response.Headers, CreatedAt: time.Now()}
	if err = s.store(ctx, entry); err != nil {
		return nil, err
	}
	if response.Redirected && response.URL != URL {
		marker := &Entry{
			URL:       URL,
			Headers:   Headers{{Name: HeaderLocation, Value: response.URL}},
			CreatedAt: time.Now(),
		}
		if err = s.store(ctx, marker); err != nil {
			return nil, err
		}
		s.logger.Debug("cached redirect", "from", URL, "to", response.URL)
	}
	return response, nil
}

//Query returns the cached response for a URL or nil when absent. A stored
//redirect marker is materialized by fetching its target and the result is
//flagged redirected.
func (s *Service) Query(ctx context.Context, URL string) (*Response, error) {
	if err := s.ensureStore(ctx); err != nil {
		return nil, err
	}
	entry, err := s.lookup(ctx, URL)
	if err != nil || entry == nil {
		return nil, err
	}
	if entry.IsRedirect() {
		response, err := s.Fetch(ctx, entry.Location())
		if err != nil {
			return nil, err
		}
		response.Redirected = true
		return response, nil
	}
	return &Response{URL: entry.URL, Content: entry.Content, Headers: entry.Headers, FromCache: true}, nil
}

//Prune removes persisted entries older than the supplied age; zero age
//removes every entry. It returns the number of removed entries.
func (s *Service) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	if err := s.ensureStore(ctx); err != nil {
		return 0, err
	}
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to list cache store: %v", s.baseURL)
	}
	deadline := time.Now().Add(-olderThan)
	pruneErrors := shared.NewErrors()
	removed := int32(0)
	wg := sync.WaitGroup{}
	for i := range objects {
		object := objects[i]
		if object.IsDir() {
			continue
		}
		if olderThan > 0 && object.ModTime().After(deadline) {
			continue
		}
		wg.Add(1)
		go func(URL string) {
			defer wg.Done()
			if err := s.fs.Delete(ctx, URL); err != nil {
				pruneErrors.Append(errors.Wrapf(err, "failed to prune: %v", URL))
				return
			}
			atomic.AddInt32(&removed, 1)
		}(object.URL())
	}
	wg.Wait()
	return int(atomic.LoadInt32(&removed)), pruneErrors.Error()
}

func (s *Service) store(ctx context.Context, entry *Entry) error {
	data, err := gojay.MarshalJSONObject(entry)
	if err != nil {
		return errors.Wrapf(err, "failed to encode cache entry: %v", entry.URL)
	}
	URL := url.Join(s.baseURL, Key(entry.URL))
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to persist cache entry: %v", entry.URL)
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, URL string) (*Entry, error) {
	entryURL := url.Join(s.baseURL, Key(URL))
	exists, err := s.fs.Exists(ctx, entryURL, option.NewObjectKind(true))
	if err != nil || !exists {
		return nil, err
	}
	data, err := s.fs.DownloadWithURL(ctx, entryURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load cache entry: %v", URL)
	}
	entry := &Entry{}
	if err = gojay.UnmarshalJSONObject(data, entry); err != nil {
		return nil, errors.Wrapf(err, "failed to decode cache entry: %v", URL)
	}
	return entry, nil
}

//ensureStore lazily materializes the backing store location once; every
//operation goes through it first.
func (s *Service) ensureStore(ctx context.Context) error {
	s.once.Do(func() {
		exists, err := s.fs.Exists(ctx, s.baseURL)
		if err != nil {
			s.initErr = errors.Wrapf(err, "failed to check cache store: %v", s.baseURL)
			return
		}
		if exists {
			return
		}
		if err = s.fs.Create(ctx, s.baseURL, file.DefaultDirOsMode, true); err != nil {
			s.initErr = errors.Wrapf(err, "failed to create cache store: %v", s.baseURL)
		}
	})
	return s.initErr
}

//New creates a content cache service backed by the supplied store URL.
func New(baseURL string, opts ...Option) *Service {
	ret := &Service{baseURL: baseURL}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.logger == nil {
		ret.logger = logging.Default()
	}
	if ret.fetcher == nil {
		ret.fetcher = newHTTPFetcher(ret.client)
	}
	return ret
}
