package document

import (
	"strings"
	"sync"
)

type (
	//Position is a zero based line and character location.
	Position struct {
		Line      int
		Character int
	}

	//Document is an immutable snapshot of an open file at a version.
	Document struct {
		URI        string
		LanguageID string
		Version    int64
		Content    string

		once        sync.Once
		lineOffsets []int
	}
)

//PositionAt converts a byte offset into a position.
func (d *Document) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Content) {
		offset = len(d.Content)
	}
	offsets := d.lines()
	line := 0
	for line+1 < len(offsets) && offsets[line+1] <= offset {
		line++
	}
	return Position{Line: line, Character: offset - offsets[line]}
}

//OffsetAt converts a position into a byte offset.
func (d *Document) OffsetAt(position Position) int {
	offsets := d.lines()
	if position.Line < 0 {
		return 0
	}
	if position.Line >= len(offsets) {
		return len(d.Content)
	}
	offset := offsets[position.Line] + position.Character
	limit := len(d.Content)
	if position.Line+1 < len(offsets) {
		limit = offsets[position.Line+1]
	}
	if offset > limit {
		offset = limit
	}
	return offset
}

//LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return len(d.lines())
}

func (d *Document) lines() []int {
	d.once.Do(func() {
		offsets := []int{0}
		for index := 0; index < len(d.Content); {
			next := strings.IndexByte(d.Content[index:], '\n')
			if next == -1 {
				break
			}
			index += next + 1
			offsets = append(offsets, index)
		}
		d.lineOffsets = offsets
	})
	return d.lineOffsets
}

//New creates a document snapshot.
func New(URI, languageID string, documentVersion int64, text string) *Document {
	return &Document{URI: URI, LanguageID: languageID, Version: documentVersion, Content: text}
}
