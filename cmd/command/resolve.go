package command

import (
	"context"
	"fmt"
	"github.com/viant/modly"
	"github.com/viant/modly/cmd/options"
)

//defaultContainingURL stands in for the editor document when none was given.
const defaultContainingURL = "file://localhost/main.ts"

func (s *Service) resolve(ctx context.Context, opts *options.Resolve) error {
	cfg, err := s.config(ctx, opts.ConfigURL, opts.CacheURL)
	if err != nil {
		return err
	}
	if opts.ImportMapURL != "" {
		cfg.ImportMapURL = opts.ImportMapURL
	}
	service, err := modly.New(ctx, cfg)
	if err != nil {
		return err
	}
	engine := service.NewEngine(ctx)
	containing := opts.ContainingURL
	if containing == "" {
		containing = defaultContainingURL
	}
	resolution := engine.Resolve(opts.Specifier, containing)
	if resolution.Pending {
		if err = engine.AwaitIdle(ctx); err != nil {
			return err
		}
		resolution = engine.Resolve(opts.Specifier, containing)
	}
	fmt.Fprintf(s.output, "specifier: %v\n", resolution.Specifier)
	fmt.Fprintf(s.output, "matched: %v\n", resolution.Matched)
	fmt.Fprintf(s.output, "kind: %v\n", resolution.Kind)
	if resolution.Resolved != "" {
		fmt.Fprintf(s.output, "resolved: %v\n", resolution.Resolved)
	}
	return nil
}
