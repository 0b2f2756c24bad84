package command

import (
	"context"
	"fmt"
	"github.com/viant/afs"
	"github.com/viant/modly/cmd/options"
	"github.com/viant/modly/content"
)

func (s *Service) query(ctx context.Context, opts *options.Query) error {
	cfg, err := s.config(ctx, opts.ConfigURL, opts.CacheURL)
	if err != nil {
		return err
	}
	cache := content.New(cfg.CacheURL, content.WithFS(afs.New()))
	response, err := cache.Query(ctx, opts.URL)
	if err != nil {
		return err
	}
	if response == nil {
		fmt.Fprintf(s.output, "not cached: %v\n", opts.URL)
		return nil
	}
	fmt.Fprintf(s.output, "url: %v\n", response.URL)
	fmt.Fprintf(s.output, "contentType: %v\n", response.ContentType())
	fmt.Fprintf(s.output, "size: %v\n", len(response.Content))
	if typesURL := response.TypesURL(); typesURL != "" {
		fmt.Fprintf(s.output, "types: %v\n", typesURL)
	}
	if response.Redirected {
		fmt.Fprintf(s.output, "redirected: true\n")
	}
	return nil
}
