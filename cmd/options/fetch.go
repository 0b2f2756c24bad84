package options

import "fmt"

//Fetch populates the content cache with module URLs ahead of resolution.
type Fetch struct {
	ConfigURL   string   `short:"c" long:"conf" description:"config URL"`
	CacheURL    string   `short:"k" long:"cache" description:"content cache base URL"`
	URLs        []string `short:"u" long:"url" description:"module URL"`
	Concurrency int      `short:"t" long:"concurrency" description:"fetch concurrency"`
}

//Init validates fetch options.
func (f *Fetch) Init() error {
	if f.ConfigURL == "" && f.CacheURL == "" {
		return fmt.Errorf("config was empty")
	}
	if len(f.URLs) == 0 {
		return fmt.Errorf("url was empty")
	}
	return nil
}
