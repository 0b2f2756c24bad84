package command

import (
	"context"
	"fmt"
	"github.com/viant/modly"
	"github.com/viant/modly/cmd/options"
)

func (s *Service) fetch(ctx context.Context, opts *options.Fetch) error {
	cfg, err := s.config(ctx, opts.ConfigURL, opts.CacheURL)
	if err != nil {
		return err
	}
	service, err := modly.New(ctx, cfg)
	if err != nil {
		return err
	}
	fetched, err := service.Prefetch(ctx, opts.URLs, opts.Concurrency)
	fmt.Fprintf(s.output, "fetched: %v of %v\n", fetched, len(opts.URLs))
	return err
}
