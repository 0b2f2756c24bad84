package scan

import (
	"github.com/viant/parsly"
)

type (
	//Span delimits a byte range in source text.
	Span struct {
		Start int
		End   int
	}

	//Import is a module specifier literal found in source text; the span
	//covers the quoted literal.
	Import struct {
		Specifier string
		Span      Span
	}

	//Reference is a triple slash reference directive.
	Reference struct {
		Kind  string
		Value string
	}

	//Source lists what module resolution needs from a file: import
	//specifiers with their literal locations, and the reference directives
	//declaration files use to pull in further declarations.
	Source struct {
		Imports    []Import
		References []Reference
	}
)

//ImportAt returns the import whose literal covers the supplied offset.
func (s *Source) ImportAt(offset int) *Import {
	for i := range s.Imports {
		anImport := &s.Imports[i]
		if offset >= anImport.Span.Start && offset < anImport.Span.End {
			return anImport
		}
	}
	return nil
}

//Specifiers returns distinct import specifiers in source order.
func (s *Source) Specifiers() []string {
	var ret []string
	seen := map[string]bool{}
	for i := range s.Imports {
		specifier := s.Imports[i].Specifier
		if seen[specifier] {
			continue
		}
		seen[specifier] = true
		ret = append(ret, specifier)
	}
	return ret
}

//ReferenceValues returns the values of references of the supplied kinds.
func (s *Source) ReferenceValues(kinds ...string) []string {
	var ret []string
	for i := range s.References {
		for _, kind := range kinds {
			if s.References[i].Kind == kind {
				ret = append(ret, s.References[i].Value)
			}
		}
	}
	return ret
}

//Scan extracts import specifiers and reference directives from script or
//declaration source. The scan is lexical and best effort: malformed source
//yields partial results, never an error.
func Scan(input []byte) *Source {
	ret := &Source{}
	cursor := parsly.NewCursor("", input, 0)
	pending := 0
	lastWasIdent := false
outer:
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAny(whitespaceMatcher, blockCommentMatcher, lineCommentMatcher,
			doubleQuotedMatcher, singleQuotedMatcher, backQuotedMatcher,
			importMatcher, exportMatcher, fromMatcher)
		switch matched.Code {
		case parsly.EOF:
			break outer
		case whitespaceToken, blockCommentToken:
			lastWasIdent = false
		case lineCommentToken:
			line := lineRemainder(cursor)
			if reference, ok := parseReference(line); ok {
				ret.References = append(ret.References, reference)
			}
			lastWasIdent = false
		case doubleQuotedToken, singleQuotedToken:
			text := matched.Text(cursor)
			if (pending == importToken || pending == fromToken) && len(text) > 2 {
				ret.Imports = append(ret.Imports, Import{
					Specifier: text[1 : len(text)-1],
					Span:      Span{Start: cursor.Pos - len(text), End: cursor.Pos},
				})
			}
			pending = 0
			lastWasIdent = false
		case backQuotedToken:
			pending = 0
			lastWasIdent = false
		case importToken, exportToken, fromToken:
			if lastWasIdent || isIdentByte(peek(cursor)) {
				//matched inside a longer identifier
				skipIdentifier(cursor)
				pending = 0
				lastWasIdent = true
				continue
			}
			pending = matched.Code
			lastWasIdent = false
		default:
			b := cursor.Input[cursor.Pos]
			cursor.Pos++
			lastWasIdent = isIdentByte(b)
			pending = nextPending(pending, b)
		}
	}
	return ret
}

//nextPending decides whether an armed import clause survives the byte.
func nextPending(pending int, b byte) int {
	switch pending {
	case importToken, exportToken:
		switch b {
		case ';', '=', ')':
			return 0
		}
		return pending
	}
	return 0
}

//parseReference parses a line comment remainder as a reference directive.
func parseReference(line string) (Reference, bool) {
	ret := Reference{}
	cursor := parsly.NewCursor("", []byte(line), 0)
	if matched := cursor.MatchOne(slashMatcher); matched.Code != slashToken {
		return ret, false
	}
	if matched := cursor.MatchAfterOptional(whitespaceMatcher, refStartMatcher); matched.Code != refStartToken {
		return ret, false
	}
	matched := cursor.MatchAfterOptional(whitespaceMatcher, attrMatcher)
	if matched.Code != attrToken {
		return ret, false
	}
	ret.Kind = matched.Text(cursor)
	if matched = cursor.MatchAfterOptional(whitespaceMatcher, eqMatcher); matched.Code != eqToken {
		return ret, false
	}
	matched = cursor.MatchAfterOptional(whitespaceMatcher, doubleQuotedMatcher, singleQuotedMatcher)
	switch matched.Code {
	case doubleQuotedToken, singleQuotedToken:
	default:
		return ret, false
	}
	quoted := matched.Text(cursor)
	if len(quoted) <= 2 {
		return ret, false
	}
	ret.Value = quoted[1 : len(quoted)-1]
	return ret, true
}

func lineRemainder(cursor *parsly.Cursor) string {
	start := cursor.Pos
	for cursor.Pos < cursor.InputSize && cursor.Input[cursor.Pos] != '\n' {
		cursor.Pos++
	}
	return string(cursor.Input[start:cursor.Pos])
}

func peek(cursor *parsly.Cursor) byte {
	if cursor.Pos < cursor.InputSize {
		return cursor.Input[cursor.Pos]
	}
	return 0
}

func skipIdentifier(cursor *parsly.Cursor) {
	for cursor.Pos < cursor.InputSize && isIdentByte(cursor.Input[cursor.Pos]) {
		cursor.Pos++
	}
}

func isIdentByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == '$':
		return true
	}
	return false
}
