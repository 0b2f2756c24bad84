package content

import (
	"testing"
	"time"

	"github.com/francoispqt/gojay"
	"github.com/stretchr/testify/assert"
	"github.com/viant/assertly"
)

func TestEntry_Codec(t *testing.T) {
	entry := &Entry{
		URL:     "https://cdn.example/left-pad@1.0.0/mod.js",
		Content: []byte("export default 1;"),
		Headers: Headers{
			{Name: HeaderContentType, Value: "application/javascript"},
			{Name: HeaderTypes, Value: "https://cdn.example/left-pad@1.0.0/mod.d.ts"},
		},
		CreatedAt: time.UnixMilli(1700000000000),
	}
	data, err := gojay.MarshalJSONObject(entry)
	assert.Nil(t, err)
	assertly.AssertValues(t, `{
		"url": "https://cdn.example/left-pad@1.0.0/mod.js",
		"headers": [["content-type", "application/javascript"], ["x-typescript-types", "https://cdn.example/left-pad@1.0.0/mod.d.ts"]],
		"createdAt": 1700000000000
	}`, string(data))

	decoded := &Entry{}
	err = gojay.UnmarshalJSONObject(data, decoded)
	assert.Nil(t, err)
	assert.EqualValues(t, entry.URL, decoded.URL)
	assert.EqualValues(t, entry.Content, decoded.Content)
	assert.EqualValues(t, "application/javascript", decoded.Headers.Value("Content-Type"))
	assert.EqualValues(t, entry.CreatedAt.UnixMilli(), decoded.CreatedAt.UnixMilli())
}

func TestEntry_RedirectMarker(t *testing.T) {
	marker := &Entry{
		URL:       "https://cdn.example/lib@1",
		Headers:   Headers{{Name: HeaderLocation, Value: "https://cdn.example/lib@1.2.3/mod.js"}},
		CreatedAt: time.Now(),
	}
	assert.True(t, marker.IsRedirect())

	data, err := gojay.MarshalJSONObject(marker)
	assert.Nil(t, err)
	decoded := &Entry{}
	assert.Nil(t, gojay.UnmarshalJSONObject(data, decoded))
	assert.Nil(t, decoded.Content, "marker content stays null")
	assert.EqualValues(t, "https://cdn.example/lib@1.2.3/mod.js", decoded.Location())
	assert.True(t, decoded.IsRedirect())
}
