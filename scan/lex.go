package scan

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken int = iota
	blockCommentToken
	lineCommentToken
	importToken
	exportToken
	fromToken
	doubleQuotedToken
	singleQuotedToken
	backQuotedToken

	refStartToken
	attrToken
	eqToken
	slashToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
var blockCommentMatcher = parsly.NewToken(blockCommentToken, "Comment", matcher.NewSeqBlock("/*", "*/"))
var lineCommentMatcher = parsly.NewToken(lineCommentToken, "LineComment", matcher.NewFragment("//"))

var importMatcher = parsly.NewToken(importToken, "Import", matcher.NewFragment("import"))
var exportMatcher = parsly.NewToken(exportToken, "Export", matcher.NewFragment("export"))
var fromMatcher = parsly.NewToken(fromToken, "From", matcher.NewFragment("from"))

var doubleQuotedMatcher = parsly.NewToken(doubleQuotedToken, "String", matcher.NewBlock('"', '"', '\\'))
var singleQuotedMatcher = parsly.NewToken(singleQuotedToken, "String", matcher.NewBlock('\'', '\'', '\\'))
var backQuotedMatcher = parsly.NewToken(backQuotedToken, "Template", matcher.NewBlock('`', '`', '\\'))

var refStartMatcher = parsly.NewToken(refStartToken, "Reference", matcher.NewFragment("<reference"))
var attrMatcher = parsly.NewToken(attrToken, "Attribute", matcher.NewFragments(
	[]byte("no-default-lib"),
	[]byte("path"),
	[]byte("types"),
	[]byte("lib"),
))
var eqMatcher = parsly.NewToken(eqToken, "Eq", matcher.NewByte('='))
var slashMatcher = parsly.NewToken(slashToken, "Slash", matcher.NewByte('/'))
