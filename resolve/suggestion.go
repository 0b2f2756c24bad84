package resolve

import (
	"sync"

	"github.com/viant/modly/scan"
)

type (
	//RedirectSuggestion powers the quick fix that rewrites a module specifier
	//to the URL its fetch actually settled under. Suggestions are advisory;
	//resolution correctness never depends on them.
	RedirectSuggestion struct {
		File        string
		Specifier   string
		Span        scan.Span
		ProposedURL string
	}

	suggestions struct {
		mux   sync.Mutex
		seen  map[string]bool
		items map[string][]RedirectSuggestion
	}
)

func (s *suggestions) add(file, specifier string, span scan.Span, proposedURL string) {
	key := file + "\x00" + specifier + "\x00" + proposedURL
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.items[file] = append(s.items[file], RedirectSuggestion{
		File:        file,
		Specifier:   specifier,
		Span:        span,
		ProposedURL: proposedURL,
	})
}

func (s *suggestions) list(file string) []RedirectSuggestion {
	s.mux.Lock()
	defer s.mux.Unlock()
	items := s.items[file]
	if len(items) == 0 {
		return nil
	}
	ret := make([]RedirectSuggestion, len(items))
	copy(ret, items)
	return ret
}

func (s *suggestions) drop(file string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, item := range s.items[file] {
		delete(s.seen, item.File+"\x00"+item.Specifier+"\x00"+item.ProposedURL)
	}
	delete(s.items, file)
}

func newSuggestions() *suggestions {
	return &suggestions{seen: make(map[string]bool), items: make(map[string][]RedirectSuggestion)}
}
