package importmap

import (
	"context"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/cloudless/resource"
)

//OnChange is invoked with the freshly applied import map whenever the store
//content changes, including the initial load.
type OnChange func(aMap *ImportMap)

type (
	//Store holds the import map in use and keeps it in sync with its backing
	//document. When constructed with a URL the store watches that document
	//and reloads it on change; a store without URL only changes through Set.
	Store struct {
		URL      string
		fs       afs.Service
		notifier *resource.Tracker
		mux      sync.RWMutex
		aMap     *ImportMap
		onChange OnChange
	}
)

//ImportMap returns the current import map snapshot.
func (s *Store) ImportMap() *ImportMap {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.aMap
}

//Resolve applies the current import map to the supplied specifier.
func (s *Store) Resolve(specifier, containingURL string) (string, bool) {
	return Resolve(s.ImportMap(), specifier, containingURL)
}

//Set replaces the current import map.
func (s *Store) Set(aMap *ImportMap) {
	if aMap == nil {
		aMap = &ImportMap{Imports: map[string]string{}}
	}
	s.apply(aMap)
}

//SyncChanges reloads the import map when the backing document changed since
//the last check.
func (s *Store) SyncChanges(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.Notify(ctx, s.fs, s.handleChange)
}

func (s *Store) handleChange(ctx context.Context, object storage.Object, operation resource.Operation) error {
	switch operation {
	case resource.Added, resource.Modified:
		aMap, err := NewFromURL(ctx, s.fs, object.URL())
		if err != nil {
			return err
		}
		s.apply(aMap)
	case resource.Deleted:
		s.apply(&ImportMap{Imports: map[string]string{}})
	}
	return nil
}

func (s *Store) apply(aMap *ImportMap) {
	s.mux.Lock()
	s.aMap = aMap
	s.mux.Unlock()
	if s.onChange != nil {
		s.onChange(aMap)
	}
}

//NewStore creates an import map store. With a non empty URL the backing
//document is loaded eagerly and watched with the supplied check frequency.
func NewStore(ctx context.Context, fs afs.Service, URL string, checkFrequency time.Duration, onChange OnChange) (*Store, error) {
	ret := &Store{URL: URL, fs: fs, onChange: onChange, aMap: &ImportMap{Imports: map[string]string{}}}
	if URL == "" {
		return ret, nil
	}
	ret.notifier = resource.New(URL, ensureFrequency(checkFrequency))
	err := ret.SyncChanges(ctx)
	return ret, err
}

func ensureFrequency(checkFrequency time.Duration) time.Duration {
	if checkFrequency <= time.Millisecond {
		checkFrequency = time.Second
	}
	return checkFrequency
}
