package content

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

//Fetcher issues a network request for a URL, following redirects, and
//returns the final URL together with the content and selected headers.
type Fetcher interface {
	Fetch(ctx context.Context, URL string) (*Response, error)
}

//FetcherFn adapts a function to the Fetcher interface.
type FetcherFn func(ctx context.Context, URL string) (*Response, error)

//Fetch delegates to the function.
func (f FetcherFn) Fetch(ctx context.Context, URL string) (*Response, error) {
	return f(ctx, URL)
}

var persistedHeaders = []string{HeaderContentType, HeaderContentLength, HeaderCacheControl, HeaderTypes}

type httpFetcher struct {
	client *http.Client
}

func (f *httpFetcher) Fetch(ctx context.Context, URL string) (*Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid fetch URL: %v", URL)
	}
	response, err := f.client.Do(request)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch: %v", URL)
	}
	defer response.Body.Close()
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Errorf("failed to fetch: %v, status: %v", URL, response.Status)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response: %v", URL)
	}
	finalURL := URL
	if response.Request != nil && response.Request.URL != nil {
		finalURL = response.Request.URL.String()
	}
	var headers Headers
	for _, name := range persistedHeaders {
		if value := response.Header.Get(name); value != "" {
			headers = append(headers, Header{Name: name, Value: value})
		}
	}
	return &Response{
		URL:        finalURL,
		Content:    body,
		Headers:    headers,
		Redirected: finalURL != URL,
	}, nil
}

func newHTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &httpFetcher{client: client}
}
