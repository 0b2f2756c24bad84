package resolve

import (
	nurl "net/url"
	"strings"

	"github.com/viant/modly/module"
)

//Network URL schemes handled by the remote acquisition path.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

//isRelativeSpecifier returns true for specifiers addressed relative to the
//containing file or to its root.
func isRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/")
}

//schemeOf returns the URL scheme of the supplied value, empty when the value
//is not an absolute URL.
func schemeOf(URL string) string {
	parsed, err := nurl.Parse(URL)
	if err != nil {
		return ""
	}
	return parsed.Scheme
}

//absoluteURL resolves target against a base URL with RFC 3986 reference
//resolution; an already absolute target comes back unchanged and an
//unresolvable one comes back empty.
func absoluteURL(target, baseURL string) string {
	if target == "" {
		return ""
	}
	ref, err := nurl.Parse(target)
	if err != nil {
		return ""
	}
	if ref.Scheme != "" {
		return target
	}
	if baseURL == "" {
		return ""
	}
	base, err := nurl.Parse(baseURL)
	if err != nil || base.Scheme == "" {
		return ""
	}
	return base.ResolveReference(ref).String()
}

//withDeclarationExt propagates the declaration extension onto an extension
//less target imported from a declaration only module, keeping declaration to
//declaration chains consistent.
func withDeclarationExt(URL, containingURL string) string {
	if URL == "" || module.Ext(URL) != "" || !module.IsDeclarationURL(containingURL) {
		return URL
	}
	if index := strings.IndexAny(URL, "?#"); index != -1 {
		return URL[:index] + module.DeclarationExt + URL[index:]
	}
	return URL + module.DeclarationExt
}
