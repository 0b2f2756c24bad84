package host

import (
	"context"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/modly/document"
	"github.com/viant/modly/module"
)

type (
	//Workspace is the virtual file system collaborator that materializes
	//project files on demand. OpenModel returns false when the file does
	//not exist; any other failure is reported as an error.
	Workspace interface {
		OpenModel(ctx context.Context, URI string) (bool, error)
	}

	//WorkspaceFn adapts a function to the Workspace interface.
	WorkspaceFn func(ctx context.Context, URI string) (bool, error)

	//Service is an afs backed workspace; opened files land in the shared
	//document cache as version one snapshots.
	Service struct {
		fs        afs.Service
		documents *document.Cache
	}
)

//OpenModel delegates to the function.
func (f WorkspaceFn) OpenModel(ctx context.Context, URI string) (bool, error) {
	return f(ctx, URI)
}

//OpenModel loads the file behind the URI into the document cache.
func (s *Service) OpenModel(ctx context.Context, URI string) (bool, error) {
	exists, err := s.fs.Exists(ctx, URI)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, URI)
	if err != nil {
		return false, err
	}
	s.documents.Put(URI, LanguageFor(URI), 1, string(data))
	return true, nil
}

//LanguageFor derives the language identifier from a URI extension.
func LanguageFor(URI string) string {
	if module.IsDeclarationURL(URI) {
		return "typescript"
	}
	switch module.Ext(URI) {
	case ".ts", ".tsx", ".mts":
		return "typescript"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	}
	if strings.HasSuffix(URI, "/") {
		return ""
	}
	return "typescript"
}

//New creates an afs backed workspace publishing into the supplied cache.
func New(fs afs.Service, documents *document.Cache) *Service {
	return &Service{fs: fs, documents: documents}
}
