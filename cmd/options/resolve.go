package options

import "fmt"

//Resolve resolves a module specifier the way an editor host would, waiting
//for any background fetch to settle before reporting the outcome.
type Resolve struct {
	ConfigURL     string `short:"c" long:"conf" description:"config URL"`
	CacheURL      string `short:"k" long:"cache" description:"content cache base URL"`
	ImportMapURL  string `short:"m" long:"imap" description:"import map URL"`
	Specifier     string `short:"s" long:"spec" description:"module specifier"`
	ContainingURL string `short:"f" long:"from" description:"containing document URL"`
}

//Init validates resolve options.
func (r *Resolve) Init() error {
	if r.ConfigURL == "" && r.CacheURL == "" {
		return fmt.Errorf("config was empty")
	}
	if r.Specifier == "" {
		return fmt.Errorf("spec was empty")
	}
	return nil
}
