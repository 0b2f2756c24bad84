package command

import (
	"context"
	"fmt"
	"github.com/viant/afs"
	"github.com/viant/modly/cmd/options"
	"github.com/viant/modly/content"
)

func (s *Service) prune(ctx context.Context, opts *options.Prune) error {
	cfg, err := s.config(ctx, opts.ConfigURL, opts.CacheURL)
	if err != nil {
		return err
	}
	cache := content.New(cfg.CacheURL, content.WithFS(afs.New()))
	removed, err := cache.Prune(ctx, opts.MaxAge())
	if err != nil {
		return err
	}
	fmt.Fprintf(s.output, "pruned: %v\n", removed)
	return nil
}
