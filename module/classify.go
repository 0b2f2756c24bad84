package module

import (
	"strings"

	furl "github.com/viant/afs/url"
	"github.com/viant/modly/content"
)

//DeclarationExt is the extension of declaration only modules.
const DeclarationExt = ".d.ts"

var scriptContentTypes = map[string]bool{
	"application/javascript":   true,
	"text/javascript":          true,
	"application/x-javascript": true,
	"application/ecmascript":   true,
	"text/ecmascript":          true,
	"application/node":         true,
}

var typescriptContentTypes = map[string]bool{
	"application/typescript":   true,
	"text/typescript":          true,
	"application/x-typescript": true,
	"text/tsx":                 true,
	"text/jsx":                 true,
}

var genericContentTypes = map[string]bool{
	"":                         true,
	"text/plain":               true,
	"application/octet-stream": true,
}

var scriptExts = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
}

//Classify derives a module record from a fetch outcome for the supplied
//URL. A nil response means the content was not found in the cache and the
//module stays unresolved. Classification never follows redirects; the
//caller records those from the response URL.
func Classify(URL string, response *content.Response) *Record {
	if response == nil {
		return NewUnresolved(URL)
	}
	finalURL := response.URL
	if finalURL == "" {
		finalURL = URL
	}
	contentType := normalizeContentType(response.ContentType())
	switch {
	case IsDeclarationURL(finalURL):
		return &Record{Kind: KindDeclaration, URL: finalURL, Content: response.Content, ContentType: contentType}
	case scriptContentTypes[contentType], typescriptContentTypes[contentType]:
		return &Record{Kind: KindScript, URL: finalURL, Content: response.Content, ContentType: contentType}
	case genericContentTypes[contentType]:
		if scriptExts[Ext(finalURL)] {
			return &Record{Kind: KindScript, URL: finalURL, Content: response.Content, ContentType: contentType}
		}
		return NewRejected(finalURL, "unsupported extension: "+Ext(finalURL))
	}
	return NewRejected(finalURL, "unsupported content type: "+contentType)
}

//IsDeclarationURL returns true when the URL names a declaration only module.
func IsDeclarationURL(URL string) bool {
	return strings.HasSuffix(pathOf(URL), DeclarationExt)
}

//IsScriptExt returns true for recognized script extensions.
func IsScriptExt(ext string) bool {
	return scriptExts[ext]
}

//Ext returns the file extension of a URL path, empty when absent.
func Ext(URL string) string {
	path := pathOf(URL)
	if index := strings.LastIndex(path, "/"); index != -1 {
		path = path[index+1:]
	}
	if index := strings.LastIndex(path, "."); index != -1 {
		return path[index:]
	}
	return ""
}

func pathOf(URL string) string {
	path := furl.Path(URL)
	if index := strings.IndexAny(path, "?#"); index != -1 {
		path = path[:index]
	}
	return path
}

func normalizeContentType(contentType string) string {
	if index := strings.Index(contentType, ";"); index != -1 {
		contentType = contentType[:index]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
