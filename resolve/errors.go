package resolve

import "fmt"

type (
	//NetworkError reports a fetch that failed outright. The module is marked
	//rejected and nothing auto retries; recovery needs an explicit fetch
	//command or an import map change.
	NetworkError struct {
		URL   string
		Cause error
	}

	//NotFoundInCacheError reports a cache only probe that found nothing. The
	//module stays unresolved and is eligible for a later explicit fetch.
	NotFoundInCacheError struct {
		URL string
	}

	//UnsupportedContentTypeError reports a response classified as neither
	//script nor declaration.
	UnsupportedContentTypeError struct {
		URL         string
		ContentType string
		Reason      string
	}

	//WorkspaceNotFoundError reports a local project file genuinely absent,
	//permanent for the session.
	WorkspaceNotFoundError struct {
		URI string
	}
)

//Error returns the error message.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to fetch module: %v, %v", e.URL, e.Cause)
}

//Unwrap returns the underlying cause.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

//Error returns the error message.
func (e *NotFoundInCacheError) Error() string {
	return fmt.Sprintf("module not found in cache: %v", e.URL)
}

//Error returns the error message.
func (e *UnsupportedContentTypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unable to classify module: %v, %v", e.URL, e.Reason)
	}
	return fmt.Sprintf("unable to classify module: %v, content type: %v", e.URL, e.ContentType)
}

//Error returns the error message.
func (e *WorkspaceNotFoundError) Error() string {
	return fmt.Sprintf("no such file in workspace: %v", e.URI)
}
