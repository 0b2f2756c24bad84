package resolve

import (
	nurl "net/url"
	"strings"

	"golang.org/x/mod/semver"
)

//IsPackageVersionURL returns true when the URL path follows the well known
//CDN package at version convention, e.g.
//https://cdn.example/left-pad@1.0.0/mod.js. Such URLs are deliberate package
//references, so acquisition goes straight to the network instead of probing
//the cache.
func IsPackageVersionURL(URL string) bool {
	parsed, err := nurl.Parse(URL)
	if err != nil {
		return false
	}
	for _, segment := range strings.Split(parsed.Path, "/") {
		index := strings.LastIndex(segment, "@")
		//a leading @ marks a package scope, not a version
		if index <= 0 {
			continue
		}
		if isSemver(segment[index+1:]) {
			return true
		}
	}
	return false
}

//IsJSXRuntimeURL returns true when the URL names a runtime companion module
//emitted by the automatic jsx transform.
func IsJSXRuntimeURL(URL string) bool {
	parsed, err := nurl.Parse(URL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(parsed.Path, "/jsx-runtime") ||
		strings.HasSuffix(parsed.Path, "/jsx-dev-runtime")
}

func isSemver(candidate string) bool {
	if candidate == "" {
		return false
	}
	if !strings.HasPrefix(candidate, "v") {
		candidate = "v" + candidate
	}
	return semver.IsValid(candidate)
}
