package content

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/francoispqt/gojay"
)

//Selected response headers persisted with every cache entry.
const (
	HeaderContentType   = "content-type"
	HeaderContentLength = "content-length"
	HeaderCacheControl  = "cache-control"
	HeaderLocation      = "location"
	//HeaderTypes points at a declaration file holding the type information
	//for a fetched script.
	HeaderTypes = "x-typescript-types"
)

type (
	//Header is a single name value pair, persisted as a two element array.
	Header struct {
		Name  string
		Value string
		index int
	}

	//Headers is the persisted header subset of a response.
	Headers []Header

	//Entry is a single cached fetch outcome. Content is nil only for pure
	//redirect marker entries, whose headers carry the target location.
	Entry struct {
		URL       string
		Content   []byte
		Headers   Headers
		CreatedAt time.Time
	}
)

//MarshalJSONArray encodes the pair as [name, value].
func (h *Header) MarshalJSONArray(enc *gojay.Encoder) {
	enc.AddString(h.Name)
	enc.AddString(h.Value)
}

//IsNil returns true on a nil pair.
func (h *Header) IsNil() bool {
	return h == nil
}

//UnmarshalJSONArray decodes the next pair element.
func (h *Header) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var item string
	if err := dec.String(&item); err != nil {
		return err
	}
	if h.index == 0 {
		h.Name = item
	} else {
		h.Value = item
	}
	h.index++
	return nil
}

//MarshalJSONArray encodes headers as an array of pairs.
func (h Headers) MarshalJSONArray(enc *gojay.Encoder) {
	for i := range h {
		enc.AddArray(&h[i])
	}
}

//IsNil returns true when there is no header.
func (h Headers) IsNil() bool {
	return len(h) == 0
}

//UnmarshalJSONArray decodes the next header pair.
func (h *Headers) UnmarshalJSONArray(dec *gojay.Decoder) error {
	pair := Header{}
	if err := dec.AddArray(&pair); err != nil {
		return err
	}
	*h = append(*h, pair)
	return nil
}

//Value returns the value of the named header, matching case insensitively.
func (h Headers) Value(name string) string {
	for i := range h {
		if strings.EqualFold(h[i].Name, name) {
			return h[i].Value
		}
	}
	return ""
}

//MarshalJSONObject encodes the entry with the persisted cache schema.
func (e *Entry) MarshalJSONObject(enc *gojay.Encoder) {
	enc.AddStringKey("url", e.URL)
	if e.Content == nil {
		enc.AddNullKey("content")
	} else {
		enc.AddStringKey("content", base64.StdEncoding.EncodeToString(e.Content))
	}
	enc.AddArrayKey("headers", e.Headers)
	enc.AddInt64Key("createdAt", e.CreatedAt.UnixMilli())
}

//IsNil returns true on a nil entry.
func (e *Entry) IsNil() bool {
	return e == nil
}

//UnmarshalJSONObject decodes a single entry field.
func (e *Entry) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "url":
		return dec.String(&e.URL)
	case "content":
		var encoded string
		if err := dec.String(&encoded); err != nil {
			return err
		}
		if encoded == "" {
			return nil
		}
		content, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return err
		}
		e.Content = content
	case "headers":
		return dec.Array(&e.Headers)
	case "createdAt":
		var createdAt int64
		if err := dec.Int64(&createdAt); err != nil {
			return err
		}
		e.CreatedAt = time.UnixMilli(createdAt)
	}
	return nil
}

//NKeys returns the number of keys to decode.
func (e *Entry) NKeys() int {
	return 4
}

//Location returns the redirect target of a marker entry, empty otherwise.
func (e *Entry) Location() string {
	return e.Headers.Value(HeaderLocation)
}

//IsRedirect returns true for a pure redirect marker entry.
func (e *Entry) IsRedirect() bool {
	return e.Content == nil && e.Location() != ""
}
