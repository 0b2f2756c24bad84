package document

import (
	"sync"

	"github.com/viant/modly/scan"
)

type (
	anEntry struct {
		document *Document
		once     sync.Once
		derived  *scan.Source
	}

	//Cache memoizes parsed documents per URI, shared by every language
	//worker. A lookup with a stale version discards and reparses; the
	//derived module structure is computed lazily on first access after a
	//reparse and memoized alongside. Entries leave the cache only when the
	//host reports a document closed.
	Cache struct {
		mux   sync.RWMutex
		items map[string]*anEntry
	}
)

func (e *anEntry) scanSource() *scan.Source {
	e.once.Do(func() {
		e.derived = scan.Scan([]byte(e.document.Content))
	})
	return e.derived
}

//Get returns the cached document when its version still matches.
func (c *Cache) Get(URI string, documentVersion int64) *Document {
	c.mux.RLock()
	defer c.mux.RUnlock()
	entry, ok := c.items[URI]
	if !ok || entry.document.Version != documentVersion {
		return nil
	}
	return entry.document
}

//Latest returns the cached document regardless of version.
func (c *Cache) Latest(URI string) *Document {
	c.mux.RLock()
	defer c.mux.RUnlock()
	if entry, ok := c.items[URI]; ok {
		return entry.document
	}
	return nil
}

//Put parses and caches document text at a version, replacing a stale entry.
func (c *Cache) Put(URI, languageID string, documentVersion int64, text string) *Document {
	ret := New(URI, languageID, documentVersion, text)
	c.mux.Lock()
	c.items[URI] = &anEntry{document: ret}
	c.mux.Unlock()
	return ret
}

//Document returns the parsed document at the supplied version, reusing the
//cached parse when fresh and reparsing otherwise. The text getter runs only
//on a stale or missing entry.
func (c *Cache) Document(URI, languageID string, documentVersion int64, text func() string) *Document {
	if ret := c.Get(URI, documentVersion); ret != nil {
		return ret
	}
	return c.Put(URI, languageID, documentVersion, text())
}

//Derived returns the memoized module structure scan for a cached document,
//nil when the document is not cached.
func (c *Cache) Derived(URI string) *scan.Source {
	c.mux.RLock()
	entry, ok := c.items[URI]
	c.mux.RUnlock()
	if !ok {
		return nil
	}
	return entry.scanSource()
}

//Delete removes a closed document.
func (c *Cache) Delete(URI string) {
	c.mux.Lock()
	delete(c.items, URI)
	c.mux.Unlock()
}

//URIs returns the URIs of all cached documents.
func (c *Cache) URIs() []string {
	c.mux.RLock()
	defer c.mux.RUnlock()
	ret := make([]string, 0, len(c.items))
	for URI := range c.items {
		ret = append(ret, URI)
	}
	return ret
}

//Has returns true when the URI is cached.
func (c *Cache) Has(URI string) bool {
	c.mux.RLock()
	defer c.mux.RUnlock()
	_, ok := c.items[URI]
	return ok
}

//Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return len(c.items)
}

//NewCache creates a document cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]*anEntry)}
}
