package cmd

import (
	"context"
	"fmt"
	"github.com/jessevdk/go-flags"
	"github.com/viant/modly/cmd/command"
	"github.com/viant/modly/cmd/options"
)

//RunApp parses command line arguments and runs the selected command.
func RunApp(version string, args []string) error {
	if isVersionOption(args) {
		fmt.Printf("Modly: version: %v\n", version)
		return nil
	}
	opts := options.NewOptions(args)
	if _, err := flags.ParseArgs(opts, args); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}
	ctx := context.Background()
	if err := opts.Init(ctx); err != nil {
		return err
	}
	return command.New().Exec(ctx, opts)
}

func isVersionOption(args []string) bool {
	if len(args) == 0 {
		return false
	}
	return args[0] == "-v" || args[0] == "--version"
}
