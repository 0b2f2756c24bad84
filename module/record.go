package module

type (
	//Kind discriminates module record variants.
	Kind int

	//Record describes what is known about a remote module URL. A record is
	//created lazily as Unresolved on the first resolution attempt and
	//transitions exactly once per fetch outcome; Rejected and Unresolved are
	//terminal for the session unless explicitly invalidated.
	Record struct {
		Kind        Kind
		URL         string
		Content     []byte
		ContentType string
		//Target holds the redirect destination for a Redirect record.
		Target string
		//Reason explains a rejection.
		Reason string
	}
)

const (
	KindUnresolved = Kind(iota)
	KindRejected
	KindScript
	KindDeclaration
	KindAmbientLib
	KindRedirect
)

//String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUnresolved:
		return "unresolved"
	case KindRejected:
		return "rejected"
	case KindScript:
		return "script"
	case KindDeclaration:
		return "declaration"
	case KindAmbientLib:
		return "ambientLib"
	case KindRedirect:
		return "redirect"
	}
	return "unknown"
}

//IsResolved returns true when the record carries usable module content.
func (r *Record) IsResolved() bool {
	switch r.Kind {
	case KindScript, KindDeclaration, KindAmbientLib:
		return true
	}
	return false
}

//IsTerminal returns true when no further fetch can improve the record.
func (r *Record) IsTerminal() bool {
	return r.Kind == KindRejected
}

//NewUnresolved creates an unresolved record.
func NewUnresolved(URL string) *Record {
	return &Record{Kind: KindUnresolved, URL: URL}
}

//NewRejected creates a rejected record.
func NewRejected(URL, reason string) *Record {
	return &Record{Kind: KindRejected, URL: URL, Reason: reason}
}

//NewRedirect creates a redirect record.
func NewRedirect(from, to string) *Record {
	return &Record{Kind: KindRedirect, URL: from, Target: to}
}

//NewAmbientLib creates an ambient lib record, a declaration treated as an
//always available global type source.
func NewAmbientLib(URL string, libContent []byte) *Record {
	return &Record{Kind: KindAmbientLib, URL: URL, Content: libContent}
}
