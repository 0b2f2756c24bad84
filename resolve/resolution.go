package resolve

import (
	"github.com/viant/modly/module"
)

type (
	//Resolution is the synchronous answer to a single specifier lookup. A
	//pending resolution is provisional: a background fetch is in flight and
	//the answer carries the literal target as a placeholder until the
	//settlement rolls back the containing file's version and the host asks
	//again.
	Resolution struct {
		Specifier string
		Resolved  string
		Matched   bool
		Kind      module.Kind
		Pending   bool
	}
)

//IsResolved returns true when the resolution points at usable module content.
func (r *Resolution) IsResolved() bool {
	switch r.Kind {
	case module.KindScript, module.KindDeclaration, module.KindAmbientLib:
		return true
	}
	return false
}
