package content

type (
	//Response is the outcome of a fetch or a cache query. URL holds the
	//final, post redirect URL the content came from.
	Response struct {
		URL        string
		Content    []byte
		Headers    Headers
		FromCache  bool
		Redirected bool
	}
)

//ContentType returns the response content type header.
func (r *Response) ContentType() string {
	return r.Headers.Value(HeaderContentType)
}

//TypesURL returns the declaration pointer header if present.
func (r *Response) TypesURL() string {
	return r.Headers.Value(HeaderTypes)
}
