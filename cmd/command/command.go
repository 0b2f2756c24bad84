package command

import (
	"context"
	"fmt"
	"github.com/viant/modly/cmd/options"
	"github.com/viant/modly/config"
	"io"
	"os"
)

//Service executes command line commands.
type Service struct {
	output io.Writer
}

//Exec runs the command selected on the supplied options.
func (s *Service) Exec(ctx context.Context, opts *options.Options) error {
	switch opts.Command() {
	case "fetch":
		return s.fetch(ctx, opts.Fetch)
	case "query":
		return s.query(ctx, opts.Query)
	case "resolve":
		return s.resolve(ctx, opts.Resolve)
	case "prune":
		return s.prune(ctx, opts.Prune)
	}
	return fmt.Errorf("unsupported command")
}

func (s *Service) config(ctx context.Context, configURL, cacheURL string) (*config.Config, error) {
	if configURL != "" {
		return config.NewFromURL(ctx, configURL)
	}
	return config.New(cacheURL), nil
}

//New creates a command service.
func New(opts ...Option) *Service {
	ret := &Service{output: os.Stdout}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
