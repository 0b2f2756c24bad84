package importmap

import (
	"sort"
	"strings"

	furl "github.com/viant/afs/url"
)

//Resolve maps a specifier against the import map on behalf of the file at
//containingURL. Scoped tables are consulted first, longest matching scope
//prefix wins, and within any table an exact key beats a trailing slash
//prefix key. An unmatched specifier comes back unchanged with matched set to
//false, telling the caller to interpret it as a relative path, absolute URL
//or unsupported bare specifier instead.
func Resolve(aMap *ImportMap, specifier, containingURL string) (string, bool) {
	if aMap.IsEmpty() || specifier == "" {
		return specifier, false
	}
	for _, scoped := range matchedScopes(aMap, containingURL) {
		if resolved, ok := substitute(scoped, specifier); ok {
			return resolved, true
		}
	}
	return substitute(aMap.Imports, specifier)
}

//matchedScopes returns the scope tables applicable to the containing URL,
//most specific first. A scope key matches when it prefixes the containing
//URL, or its path when the key is site absolute.
func matchedScopes(aMap *ImportMap, containingURL string) []map[string]string {
	if len(aMap.Scopes) == 0 || containingURL == "" {
		return nil
	}
	var keys []string
	containingPath := furl.Path(containingURL)
	for prefix := range aMap.Scopes {
		if strings.HasPrefix(containingURL, prefix) {
			keys = append(keys, prefix)
			continue
		}
		if strings.HasPrefix(prefix, "/") && strings.HasPrefix(containingPath, prefix) {
			keys = append(keys, prefix)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] > keys[j]
	})
	var ret []map[string]string
	for _, key := range keys {
		ret = append(ret, aMap.Scopes[key])
	}
	return ret
}

//substitute applies exact key then longest trailing slash prefix key
//substitution within a single table.
func substitute(imports map[string]string, specifier string) (string, bool) {
	if len(imports) == 0 {
		return specifier, false
	}
	if mapped, ok := imports[specifier]; ok {
		return mapped, true
	}
	bestKey := ""
	for key := range imports {
		if !strings.HasSuffix(key, "/") || !strings.HasPrefix(specifier, key) {
			continue
		}
		if len(key) > len(bestKey) {
			bestKey = key
		}
	}
	if bestKey == "" {
		return specifier, false
	}
	return imports[bestKey] + specifier[len(bestKey):], true
}
