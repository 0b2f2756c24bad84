package importmap

import (
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/viant/afs"
)

type (
	//ImportMap remaps bare module specifiers to concrete URLs. Scopes hold
	//per URL prefix overrides consulted ahead of the top level imports table
	//for files whose URL falls under the scope prefix.
	ImportMap struct {
		Imports   map[string]string            `json:"imports,omitempty" yaml:"imports,omitempty"`
		Scopes    map[string]map[string]string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
		SourceRef string                       `json:"sourceRef,omitempty" yaml:"sourceRef,omitempty"`
	}
)

//IsEmpty returns true when the map carries no mapping at all.
func (m *ImportMap) IsEmpty() bool {
	return m == nil || (len(m.Imports) == 0 && len(m.Scopes) == 0)
}

//Parse decodes an import map document.
func Parse(data []byte) (*ImportMap, error) {
	ret := &ImportMap{}
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, errors.Wrapf(err, "invalid import map")
	}
	if ret.Imports == nil {
		ret.Imports = map[string]string{}
	}
	return ret, nil
}

//NewFromURL loads and parses an import map from the supplied URL.
func NewFromURL(ctx context.Context, fs afs.Service, URL string) (*ImportMap, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load import map: %v", URL)
	}
	aMap, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse import map: %v", URL)
	}
	if aMap.SourceRef == "" {
		aMap.SourceRef = URL
	}
	return aMap, nil
}
