package module

import "sync"

type (
	//Store holds the per session remote module tables: classification
	//records, the script to declaration URL mapping established by the
	//declaration pointer header, and the module URL to human specifier
	//mapping used to present hover text.
	Store struct {
		mux        sync.RWMutex
		records    map[string]*Record
		types      map[string]string
		specifiers map[string]string
	}
)

//Lookup returns the record for a URL or nil.
func (s *Store) Lookup(URL string) *Record {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.records[URL]
}

//Ensure returns the record for a URL, creating an unresolved one on first use.
func (s *Store) Ensure(URL string) *Record {
	s.mux.Lock()
	defer s.mux.Unlock()
	if record, ok := s.records[URL]; ok {
		return record
	}
	record := NewUnresolved(URL)
	s.records[URL] = record
	return record
}

//Put stores the record unless its URL already settled; the first settlement
//wins and later ones are ignored. It returns the effective record.
func (s *Store) Put(record *Record) *Record {
	s.mux.Lock()
	defer s.mux.Unlock()
	if existing, ok := s.records[record.URL]; ok && existing.Kind != KindUnresolved {
		return existing
	}
	s.records[record.URL] = record
	return record
}

//PutAmbient registers a declaration as an always available global type
//source.
func (s *Store) PutAmbient(URL string, libContent []byte) *Record {
	return s.Put(NewAmbientLib(URL, libContent))
}

//SetTypes records that type information for a script lives in a separate
//declaration URL.
func (s *Store) SetTypes(scriptURL, typesURL string) {
	s.mux.Lock()
	s.types[scriptURL] = typesURL
	s.mux.Unlock()
}

//TypesURL returns the declaration URL holding type information for a script,
//empty when the script is its own type source.
func (s *Store) TypesURL(scriptURL string) string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.types[scriptURL]
}

//SetSpecifier remembers the human specifier a module URL was imported as.
func (s *Store) SetSpecifier(URL, specifier string) {
	s.mux.Lock()
	s.specifiers[URL] = specifier
	s.mux.Unlock()
}

//Specifier returns the human specifier for a module URL.
func (s *Store) Specifier(URL string) (string, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	specifier, ok := s.specifiers[URL]
	return specifier, ok
}

//Invalidate drops the record and type mapping for a URL so an explicit retry
//can fetch it again.
func (s *Store) Invalidate(URL string) {
	s.mux.Lock()
	delete(s.records, URL)
	delete(s.types, URL)
	s.mux.Unlock()
}

//Records returns a snapshot of all records.
func (s *Store) Records() []*Record {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		ret = append(ret, record)
	}
	return ret
}

//Len returns the number of records.
func (s *Store) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.records)
}

//NewStore creates a remote module store.
func NewStore() *Store {
	return &Store{
		records:    make(map[string]*Record),
		types:      make(map[string]string),
		specifiers: make(map[string]string),
	}
}
