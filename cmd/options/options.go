package options

import (
	"context"
)

const (
	fetchCommand   = "fetch"
	queryCommand   = "query"
	resolveCommand = "resolve"
	pruneCommand   = "prune"
)

//Options holds the command line commands; exactly one member is active per
//invocation, selected by the leading argument.
type Options struct {
	Fetch   *Fetch   `command:"fetch" description:"fetch module URLs into the content cache"`
	Query   *Query   `command:"query" description:"inspect a cached module URL without going to the network"`
	Resolve *Resolve `command:"resolve" description:"resolve a module specifier"`
	Prune   *Prune   `command:"prune" description:"remove aged content cache entries"`
	active  string
}

//Command returns the active command name.
func (o *Options) Command() string {
	return o.active
}

//Init validates the active command options.
func (o *Options) Init(ctx context.Context) error {
	switch o.active {
	case fetchCommand:
		return o.Fetch.Init()
	case queryCommand:
		return o.Query.Init()
	case resolveCommand:
		return o.Resolve.Init()
	case pruneCommand:
		return o.Prune.Init()
	}
	return nil
}

//NewOptions creates options with the member named by the leading argument
//pre allocated, so that flag parsing populates the selected command.
func NewOptions(args []string) *Options {
	ret := &Options{}
	if len(args) == 0 {
		return ret
	}
	switch args[0] {
	case fetchCommand:
		ret.Fetch = &Fetch{}
	case queryCommand:
		ret.Query = &Query{}
	case resolveCommand:
		ret.Resolve = &Resolve{}
	case pruneCommand:
		ret.Prune = &Prune{}
	default:
		return ret
	}
	ret.active = args[0]
	return ret
}
