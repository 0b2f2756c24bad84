package refresh

import "sync"

//Listener receives the URI of a file whose resolvable state changed.
type Listener func(URI string)

type (
	//Signal is a per language registry of diagnostics refresh callbacks.
	//Components completing an asynchronous operation that changed resolvable
	//state call Refresh with the affected file; the hosting editor
	//integration decides what gets recomputed.
	Signal struct {
		mux       sync.RWMutex
		listeners map[string][]Listener
	}
)

//Register adds a refresh listener for the supplied language.
func (s *Signal) Register(languageID string, listener Listener) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.listeners[languageID] = append(s.listeners[languageID], listener)
}

//Refresh notifies every registered listener about the changed file.
func (s *Signal) Refresh(URI string) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	for _, listeners := range s.listeners {
		for _, listener := range listeners {
			listener(URI)
		}
	}
}

//Languages returns registered language identifiers.
func (s *Signal) Languages() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var ret []string
	for languageID := range s.listeners {
		ret = append(ret, languageID)
	}
	return ret
}

//New creates a refresh signal registry.
func New() *Signal {
	return &Signal{listeners: make(map[string][]Listener)}
}
