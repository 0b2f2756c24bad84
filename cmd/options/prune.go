package options

import (
	"fmt"
	"time"
)

//Prune removes content cache entries older than the supplied age; with no
//age every entry goes.
type Prune struct {
	ConfigURL string `short:"c" long:"conf" description:"config URL"`
	CacheURL  string `short:"k" long:"cache" description:"content cache base URL"`
	AgeSec    int    `short:"a" long:"age" description:"max entry age in seconds"`
}

//Init validates prune options.
func (p *Prune) Init() error {
	if p.ConfigURL == "" && p.CacheURL == "" {
		return fmt.Errorf("config was empty")
	}
	return nil
}

//MaxAge returns the prune age threshold.
func (p *Prune) MaxAge() time.Duration {
	return time.Duration(p.AgeSec) * time.Second
}
