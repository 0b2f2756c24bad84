package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/modly/shared/logging"
	"github.com/viant/toolbox"
	"gopkg.in/yaml.v3"
)

type (
	//Config defines a resolution session setup: where fetched module content
	//persists, where the import map document lives and how the network is
	//reached. A config document is JSON or YAML, selected by URL extension.
	Config struct {
		URL              string `json:",omitempty" yaml:",omitempty"`
		Version          string `json:",omitempty" yaml:",omitempty"`
		CacheURL         string
		ImportMapURL     string   `json:",omitempty" yaml:",omitempty"`
		SyncFrequencyMs  int      `json:",omitempty" yaml:",omitempty"`
		NetworkTimeoutMs int      `json:",omitempty" yaml:",omitempty"`
		LogLevel         string   `json:",omitempty" yaml:",omitempty"`
		LocalSchemes     []string `json:",omitempty" yaml:",omitempty"`
		AmbientLibURLs   []string `json:",omitempty" yaml:",omitempty"`
		MetricURI        string   `json:",omitempty" yaml:",omitempty"`
	}
)

//Init applies config defaults.
func (c *Config) Init() {
	if c.SyncFrequencyMs == 0 {
		c.SyncFrequencyMs = 5000
	}
	if c.NetworkTimeoutMs == 0 {
		c.NetworkTimeoutMs = 30000
	}
	if c.LogLevel == "" {
		c.LogLevel = logging.INFO
	}
	if len(c.LocalSchemes) == 0 {
		c.LocalSchemes = []string{"file", "mem"}
	}
}

//Validate checks config consistency.
func (c *Config) Validate() error {
	if c.CacheURL == "" {
		return fmt.Errorf("CacheURL was empty")
	}
	return nil
}

//SyncFrequency returns the import map check frequency.
func (c *Config) SyncFrequency() time.Duration {
	return time.Duration(c.SyncFrequencyMs) * time.Millisecond
}

//NetworkTimeout returns the fetch timeout.
func (c *Config) NetworkTimeout() time.Duration {
	return time.Duration(c.NetworkTimeoutMs) * time.Millisecond
}

//New creates a config with defaults applied.
func New(cacheURL string) *Config {
	ret := &Config{CacheURL: cacheURL}
	ret.Init()
	return ret
}

//NewFromURL loads a config document from the supplied URL.
func NewFromURL(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, err
	}
	aMap := map[string]interface{}{}
	if strings.HasSuffix(URL, "yaml") || strings.HasSuffix(URL, "yml") {
		if err := yaml.Unmarshal(data, &aMap); err != nil {
			return nil, err
		}
	} else {
		if err := json.Unmarshal(data, &aMap); err != nil {
			return nil, err
		}
	}
	cfg := &Config{}
	err = toolbox.DefaultConverter.AssignConverted(cfg, aMap)
	if err != nil {
		return nil, err
	}
	cfg.URL = URL
	cfg.Init()
	return cfg, cfg.Validate()
}
