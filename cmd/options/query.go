package options

import "fmt"

//Query inspects a cached module URL; it never touches the network.
type Query struct {
	ConfigURL string `short:"c" long:"conf" description:"config URL"`
	CacheURL  string `short:"k" long:"cache" description:"content cache base URL"`
	URL       string `short:"u" long:"url" description:"module URL"`
}

//Init validates query options.
func (q *Query) Init() error {
	if q.ConfigURL == "" && q.CacheURL == "" {
		return fmt.Errorf("config was empty")
	}
	if q.URL == "" {
		return fmt.Errorf("url was empty")
	}
	return nil
}
