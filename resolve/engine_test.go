package resolve

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/modly/content"
	"github.com/viant/modly/document"
	"github.com/viant/modly/host"
	"github.com/viant/modly/importmap"
	"github.com/viant/modly/module"
	"github.com/viant/modly/refresh"
	"github.com/viant/modly/version"
)

type fetcherStub struct {
	mux   sync.Mutex
	count map[string]int
	gate  chan struct{}
	serve func(URL string) (*content.Response, error)
}

func (f *fetcherStub) Fetch(ctx context.Context, URL string) (*content.Response, error) {
	f.mux.Lock()
	f.count[URL]++
	f.mux.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.serve(URL)
}

func (f *fetcherStub) fetched(URL string) int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.count[URL]
}

func (f *fetcherStub) total() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	ret := 0
	for _, count := range f.count {
		ret += count
	}
	return ret
}

func scriptResponse(URL, body string, headers ...content.Header) *content.Response {
	allHeaders := content.Headers{{Name: content.HeaderContentType, Value: "application/javascript"}}
	allHeaders = append(allHeaders, headers...)
	return &content.Response{URL: URL, Content: []byte(body), Headers: allHeaders}
}

func declarationResponse(URL, body string) *content.Response {
	return &content.Response{
		URL:     URL,
		Content: []byte(body),
		Headers: content.Headers{{Name: content.HeaderContentType, Value: "application/typescript"}},
	}
}

type engineFixture struct {
	engine    *Engine
	fetcher   *fetcherStub
	fs        afs.Service
	clock     *version.Clock
	signal    *refresh.Signal
	documents *document.Cache
	mux       sync.Mutex
	refreshed map[string]int
}

func (f *engineFixture) refreshCount(URI string) int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.refreshed[URI]
}

func (f *engineFixture) awaitIdle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Nil(t, f.engine.AwaitIdle(ctx))
}

func (f *engineFixture) upload(t *testing.T, URL, text string) {
	err := f.fs.Upload(context.Background(), URL, file.DefaultFileOsMode, strings.NewReader(text))
	assert.Nil(t, err)
}

func newEngineFixture(name string, serve func(URL string) (*content.Response, error), opts ...Option) *engineFixture {
	ret := &engineFixture{
		fetcher:   &fetcherStub{count: map[string]int{}, serve: serve},
		fs:        afs.New(),
		clock:     version.New(),
		signal:    refresh.New(),
		documents: document.NewCache(),
		refreshed: map[string]int{},
	}
	if serve == nil {
		ret.fetcher.serve = func(URL string) (*content.Response, error) {
			return nil, errors.Errorf("unexpected fetch: %v", URL)
		}
	}
	ret.signal.Register("typescript", func(URI string) {
		ret.mux.Lock()
		ret.refreshed[URI]++
		ret.mux.Unlock()
	})
	cache := content.New("mem://localhost/modly/engine/"+name,
		content.WithFS(ret.fs),
		content.WithFetcher(ret.fetcher))
	options := append([]Option{
		WithContentCache(cache),
		WithDocuments(ret.documents),
		WithClock(ret.clock),
		WithSignal(ret.signal),
		WithWorkspace(host.New(ret.fs, ret.documents)),
	}, opts...)
	ret.engine = New(context.Background(), options...)
	return ret
}

func TestEngine_ImportMapFetch(t *testing.T) {
	modURL := "https://cdn.example/left-pad@1.0.0/mod.js"
	fixture := newEngineFixture("leftpad", func(URL string) (*content.Response, error) {
		if URL == modURL {
			return scriptResponse(URL, "export default function leftPad(){}"), nil
		}
		return nil, errors.Errorf("unexpected fetch: %v", URL)
	}, WithImportMap(&importmap.ImportMap{Imports: map[string]string{"left-pad": modURL}}))

	mainURI := "mem://localhost/src/main.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import leftPad from "left-pad";`)

	provisional := fixture.engine.Resolve("left-pad", mainURI)
	assert.True(t, provisional.Matched)
	assert.True(t, provisional.Pending)
	assert.EqualValues(t, "left-pad", provisional.Resolved, "a pending resolution answers with the literal specifier")

	fixture.awaitIdle(t)
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI), "one settlement, one rollback")
	assert.EqualValues(t, 1, fixture.refreshCount(mainURI))
	assert.EqualValues(t, 1, fixture.fetcher.fetched(modURL))

	settled := fixture.engine.Resolve("left-pad", mainURI)
	assert.False(t, settled.Pending)
	assert.EqualValues(t, module.KindScript, settled.Kind)
	assert.EqualValues(t, modURL, settled.Resolved)
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI), "a settled resolution does not roll back again")
	assert.EqualValues(t, 1, fixture.fetcher.fetched(modURL), "a settled resolution does not refetch")
	assert.EqualValues(t, "0.0", fixture.engine.Version(mainURI))
}

func TestEngine_BareUnmatched(t *testing.T) {
	fixture := newEngineFixture("bare", nil)
	mainURI := "mem://localhost/src/main.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import _ from "lodash";`)

	resolution := fixture.engine.Resolve("lodash", mainURI)
	assert.False(t, resolution.Matched)
	assert.False(t, resolution.Pending)
	assert.EqualValues(t, "", resolution.Resolved, "an unmatched bare specifier stays with the host")
	assert.EqualValues(t, 0, fixture.fetcher.total())
	assert.EqualValues(t, 0, fixture.clock.Delta(mainURI))
}

func TestEngine_LocalOpen(t *testing.T) {
	fixture := newEngineFixture("localopen", nil)
	mainURI := "mem://localhost/src/main.ts"
	utilURI := "mem://localhost/src/util.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import { util } from "./util.ts";`)
	fixture.upload(t, utilURI, "export const util = 1;")

	provisional := fixture.engine.Resolve("./util.ts", mainURI)
	assert.True(t, provisional.Pending)
	assert.EqualValues(t, "./util.ts", provisional.Resolved)

	fixture.awaitIdle(t)
	assert.True(t, fixture.documents.Has(utilURI), "the opened file lands in the document cache")
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI))
	assert.EqualValues(t, 1, fixture.refreshCount(mainURI))

	settled := fixture.engine.Resolve("./util.ts", mainURI)
	assert.False(t, settled.Pending)
	assert.EqualValues(t, module.KindScript, settled.Kind)
	assert.EqualValues(t, utilURI, settled.Resolved)
	assert.EqualValues(t, 0, fixture.fetcher.total(), "project files never reach the network")
}

func TestEngine_LocalMissing(t *testing.T) {
	fixture := newEngineFixture("localmissing", nil)
	mainURI := "mem://localhost/src/main.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import { util } from "./util.ts";`)

	provisional := fixture.engine.Resolve("./util.ts", mainURI)
	assert.True(t, provisional.Pending)

	fixture.awaitIdle(t)
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI))
	assert.EqualValues(t, 1, fixture.refreshCount(mainURI))

	settled := fixture.engine.Resolve("./util.ts", mainURI)
	assert.False(t, settled.Pending)
	assert.EqualValues(t, module.KindRejected, settled.Kind, "a missing project file is permanent for the session")
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI), "a terminal answer does not roll back")

	record := fixture.engine.Modules().Lookup("mem://localhost/src/util.ts")
	if assert.NotNil(t, record) {
		assert.Contains(t, record.Reason, "no such file")
	}
}

func TestEngine_DeclarationPointer(t *testing.T) {
	scriptURL := "https://cdn.example/lib@2.0.0/mod.js"
	declURL := "https://cdn.example/lib@2.0.0/mod.d.ts"
	fixture := newEngineFixture("declpointer", func(URL string) (*content.Response, error) {
		switch URL {
		case scriptURL:
			return scriptResponse(URL, "export const x = 1;",
				content.Header{Name: content.HeaderTypes, Value: "./mod.d.ts"}), nil
		case declURL:
			return declarationResponse(URL, "export declare const x: number;"), nil
		}
		return nil, errors.Errorf("unexpected fetch: %v", URL)
	}, WithImportMap(&importmap.ImportMap{Imports: map[string]string{"lib": scriptURL}}))

	mainURI := "mem://localhost/src/main.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import { x } from "lib";`)

	provisional := fixture.engine.Resolve("lib", mainURI)
	assert.True(t, provisional.Pending)
	fixture.awaitIdle(t)

	settled := fixture.engine.Resolve("lib", mainURI)
	assert.False(t, settled.Pending)
	assert.EqualValues(t, module.KindDeclaration, settled.Kind, "the pointed to declaration is the type source")
	assert.EqualValues(t, declURL, settled.Resolved)
	assert.EqualValues(t, declURL, fixture.engine.Modules().TypesURL(scriptURL))
	assert.EqualValues(t, "lib", fixture.engine.SpecifierFor(declURL), "hover presents the human specifier")
	assert.EqualValues(t, 1, fixture.fetcher.fetched(scriptURL))
	assert.EqualValues(t, 1, fixture.fetcher.fetched(declURL))
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI), "script and declaration settle as one acquisition")
}

func TestEngine_FetchCoalescing(t *testing.T) {
	modURL := "https://cdn.example/left-pad@1.0.0/mod.js"
	fixture := newEngineFixture("coalesce", func(URL string) (*content.Response, error) {
		return scriptResponse(URL, "export default function leftPad(){}"), nil
	}, WithImportMap(&importmap.ImportMap{Imports: map[string]string{"left-pad": modURL}}))
	fixture.fetcher.gate = make(chan struct{})

	files := []string{
		"mem://localhost/src/a.ts",
		"mem://localhost/src/b.ts",
		"mem://localhost/src/c.ts",
	}
	for _, URI := range files {
		fixture.documents.Put(URI, "typescript", 1, `import leftPad from "left-pad";`)
		resolution := fixture.engine.Resolve("left-pad", URI)
		assert.True(t, resolution.Pending, URI)
	}

	close(fixture.fetcher.gate)
	fixture.awaitIdle(t)

	assert.EqualValues(t, 1, fixture.fetcher.fetched(modURL), "concurrent demand coalesces into one fetch")
	for _, URI := range files {
		assert.EqualValues(t, -1, fixture.clock.Delta(URI), URI)
		assert.EqualValues(t, 1, fixture.refreshCount(URI), URI)
		settled := fixture.engine.Resolve("left-pad", URI)
		assert.EqualValues(t, module.KindScript, settled.Kind, URI)
	}
}

func TestEngine_RedirectStability(t *testing.T) {
	requested := "https://cdn.example/lib@1"
	finalURL := "https://cdn.example/lib@1.2.3/mod.js"
	fixture := newEngineFixture("redirect", func(URL string) (*content.Response, error) {
		if URL == requested {
			response := scriptResponse(finalURL, "export const x = 1;")
			response.Redirected = true
			return response, nil
		}
		return nil, errors.Errorf("unexpected fetch: %v", URL)
	}, WithImportMap(&importmap.ImportMap{Imports: map[string]string{"lib1": requested}}))

	mainURI := "mem://localhost/src/main.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import { x } from "lib1";`)

	provisional := fixture.engine.Resolve("lib1", mainURI)
	assert.True(t, provisional.Pending)
	fixture.awaitIdle(t)

	settled := fixture.engine.Resolve("lib1", mainURI)
	assert.EqualValues(t, module.KindScript, settled.Kind)
	assert.EqualValues(t, finalURL, settled.Resolved, "resolution lands on the post redirect URL")
	assert.EqualValues(t, 1, fixture.fetcher.fetched(requested))
	assert.EqualValues(t, 0, fixture.fetcher.fetched(finalURL), "the settled redirect never refetches")
	assert.Empty(t, fixture.engine.Suggestions(mainURI), "import map resolved specifiers get no suggestion")

	//a literal URL specifier resolving through the redirect earns a rewrite suggestion
	otherURI := "mem://localhost/src/other.ts"
	fixture.documents.Put(otherURI, "typescript", 1, `import { x } from "https://cdn.example/lib@1";`)
	direct := fixture.engine.Resolve(requested, otherURI)
	assert.EqualValues(t, module.KindScript, direct.Kind)
	assert.EqualValues(t, finalURL, direct.Resolved)
	assert.EqualValues(t, 1, fixture.fetcher.total(), "the redirect walk stays in the module tables")

	suggestions := fixture.engine.Suggestions(otherURI)
	if assert.Len(t, suggestions, 1) {
		assert.EqualValues(t, requested, suggestions[0].Specifier)
		assert.EqualValues(t, finalURL, suggestions[0].ProposedURL)
		assert.True(t, suggestions[0].Span.End > suggestions[0].Span.Start, "the suggestion locates the literal")
	}

	fixture.engine.CloseDocument(otherURI)
	assert.Empty(t, fixture.engine.Suggestions(otherURI))
	assert.False(t, fixture.documents.Has(otherURI))
	assert.EqualValues(t, 0, fixture.clock.Delta(otherURI), "closing forgets the rollback adjustment")
}

func TestEngine_CacheOnlyProbe(t *testing.T) {
	URL := "https://cdn.example/vendor/mod.js"
	fixture := newEngineFixture("cacheonly", func(fetchURL string) (*content.Response, error) {
		if fetchURL == URL {
			return scriptResponse(fetchURL, "export const vendor = true;"), nil
		}
		return nil, errors.Errorf("unexpected fetch: %v", fetchURL)
	})

	mainURI := "mem://localhost/src/main.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import { vendor } from "https://cdn.example/vendor/mod.js";`)

	provisional := fixture.engine.Resolve(URL, mainURI)
	assert.True(t, provisional.Pending)
	fixture.awaitIdle(t)
	assert.EqualValues(t, 0, fixture.fetcher.fetched(URL), "an incidental URL probes the cache only")
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI))

	settled := fixture.engine.Resolve(URL, mainURI)
	assert.False(t, settled.Pending)
	assert.EqualValues(t, module.KindUnresolved, settled.Kind, "a cache miss stays unresolved")
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI))

	//the explicit fetch command is the recovery path
	err := fixture.engine.FetchModule(context.Background(), URL)
	assert.Nil(t, err)
	assert.EqualValues(t, 1, fixture.fetcher.fetched(URL))
	assert.EqualValues(t, -2, fixture.clock.Delta(mainURI), "an explicit fetch rolls dependents back again")
	assert.EqualValues(t, 2, fixture.refreshCount(mainURI))

	recovered := fixture.engine.Resolve(URL, mainURI)
	assert.EqualValues(t, module.KindScript, recovered.Kind)
}

func TestEngine_ForcedFetchPatterns(t *testing.T) {
	pkgURL := "https://cdn.example/preact@10.5.0/hooks.js"
	jsxURL := "https://esm.example/react/jsx-runtime"
	fixture := newEngineFixture("forced", func(URL string) (*content.Response, error) {
		switch URL {
		case pkgURL, jsxURL:
			return scriptResponse(URL, "export {};"), nil
		}
		return nil, errors.Errorf("unexpected fetch: %v", URL)
	})

	mainURI := "mem://localhost/src/main.tsx"
	fixture.documents.Put(mainURI, "typescript", 1, "export {};")

	assert.True(t, fixture.engine.Resolve(pkgURL, mainURI).Pending)
	assert.True(t, fixture.engine.Resolve(jsxURL, mainURI).Pending)
	fixture.awaitIdle(t)

	assert.EqualValues(t, 1, fixture.fetcher.fetched(pkgURL), "a package at version URL goes to the network")
	assert.EqualValues(t, 1, fixture.fetcher.fetched(jsxURL), "a jsx runtime companion goes to the network")
	assert.EqualValues(t, module.KindScript, fixture.engine.Resolve(pkgURL, mainURI).Kind)
	assert.EqualValues(t, module.KindScript, fixture.engine.Resolve(jsxURL, mainURI).Kind)
}

func TestEngine_NetworkFailure(t *testing.T) {
	brokenURL := "https://cdn.example/broken@1.0.0/mod.js"
	fixture := newEngineFixture("broken", func(URL string) (*content.Response, error) {
		return nil, errors.New("connection reset")
	})

	mainURI := "mem://localhost/src/main.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import { x } from "https://cdn.example/broken@1.0.0/mod.js";`)

	assert.True(t, fixture.engine.Resolve(brokenURL, mainURI).Pending)
	fixture.awaitIdle(t)
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI))

	settled := fixture.engine.Resolve(brokenURL, mainURI)
	assert.EqualValues(t, module.KindRejected, settled.Kind)
	assert.EqualValues(t, 1, fixture.fetcher.fetched(brokenURL), "a rejected module never auto retries")

	again := fixture.engine.Resolve(brokenURL, mainURI)
	assert.EqualValues(t, module.KindRejected, again.Kind)
	assert.EqualValues(t, 1, fixture.fetcher.fetched(brokenURL))
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI), "terminal answers stop the rollback cycle")
}

func TestEngine_RemoteScriptTransitiveSkip(t *testing.T) {
	modURL := "https://cdn.example/left-pad@1.0.0/mod.js"
	fixture := newEngineFixture("transitive", func(URL string) (*content.Response, error) {
		if URL == modURL {
			return scriptResponse(URL, `import dep from "./dep.js"; export default dep;`), nil
		}
		return nil, errors.Errorf("unexpected fetch: %v", URL)
	}, WithImportMap(&importmap.ImportMap{Imports: map[string]string{"left-pad": modURL}}))

	mainURI := "mem://localhost/src/main.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import leftPad from "left-pad";`)
	fixture.engine.Resolve("left-pad", mainURI)
	fixture.awaitIdle(t)

	resolution := fixture.engine.Resolve("./dep.js", modURL)
	assert.False(t, resolution.Pending)
	assert.EqualValues(t, module.KindScript, resolution.Kind)
	assert.EqualValues(t, "https://cdn.example/left-pad@1.0.0/dep.js", resolution.Resolved)
	assert.EqualValues(t, 1, fixture.fetcher.total(), "dependencies of remote scripts are not fetched")
}

func TestEngine_ReferencePrefetch(t *testing.T) {
	indexURL := "https://cdn.example/typed@1.0.0/index.d.ts"
	helperURL := "https://cdn.example/typed@1.0.0/helper.d.ts"
	globalURL := "https://cdn.example/typed@1.0.0/global.d.ts"
	missingURL := "https://cdn.example/typed@1.0.0/missing.d.ts"
	fixture := newEngineFixture("references", func(URL string) (*content.Response, error) {
		switch URL {
		case indexURL:
			return declarationResponse(URL, `/// <reference path="./helper.d.ts" />
/// <reference lib="global" />
/// <reference path="./missing.d.ts" />
export declare function typed(): void;`), nil
		case helperURL:
			return declarationResponse(URL, `/// <reference path="./index.d.ts" />
export declare const helper: number;`), nil
		case globalURL:
			return declarationResponse(URL, "declare const global: number;"), nil
		}
		return nil, errors.Errorf("unexpected fetch: %v", URL)
	}, WithImportMap(&importmap.ImportMap{Imports: map[string]string{"typed": indexURL}}))

	mainURI := "mem://localhost/src/main.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import { typed } from "typed";`)
	assert.True(t, fixture.engine.Resolve("typed", mainURI).Pending)
	fixture.awaitIdle(t)

	assert.EqualValues(t, 1, fixture.fetcher.fetched(indexURL))
	assert.EqualValues(t, 1, fixture.fetcher.fetched(helperURL), "cyclic references fetch once")
	assert.EqualValues(t, 1, fixture.fetcher.fetched(globalURL))
	assert.EqualValues(t, 1, fixture.fetcher.fetched(missingURL))

	store := fixture.engine.Modules()
	assert.EqualValues(t, module.KindDeclaration, store.Lookup(helperURL).Kind)
	assert.EqualValues(t, module.KindAmbientLib, store.Lookup(globalURL).Kind, "lib references become ambient sources")
	assert.EqualValues(t, module.KindRejected, store.Lookup(missingURL).Kind)
	assert.EqualValues(t, -1, fixture.clock.Delta(mainURI), "reference failures stay silent")
	assert.EqualValues(t, 1, fixture.refreshCount(mainURI))

	settled := fixture.engine.Resolve("typed", mainURI)
	assert.EqualValues(t, module.KindDeclaration, settled.Kind)
	assert.EqualValues(t, indexURL, settled.Resolved)

	//an extension less relative import inside a declaration stays a declaration
	relative := fixture.engine.Resolve("./helper", indexURL)
	assert.False(t, relative.Pending)
	assert.EqualValues(t, module.KindDeclaration, relative.Kind)
	assert.EqualValues(t, helperURL, relative.Resolved)
}

func TestEngine_SetImportMap(t *testing.T) {
	reactURL := "https://esm.example/react@18.2.0/index.js"
	fixture := newEngineFixture("remap", func(URL string) (*content.Response, error) {
		if URL == reactURL {
			return scriptResponse(URL, "export default {};"), nil
		}
		return nil, errors.Errorf("unexpected fetch: %v", URL)
	})

	mainURI := "mem://localhost/src/main.ts"
	otherURI := "mem://localhost/src/other.ts"
	fixture.documents.Put(mainURI, "typescript", 1, `import React from "react";`)
	fixture.documents.Put(otherURI, "typescript", 1, "export {};")

	unmatched := fixture.engine.Resolve("react", mainURI)
	assert.False(t, unmatched.Matched)
	assert.EqualValues(t, "0.1", fixture.engine.Version(mainURI))

	fixture.engine.SetImportMap(&importmap.ImportMap{Imports: map[string]string{"react": reactURL}})
	assert.EqualValues(t, 1, fixture.clock.Epoch(), "an import map swap bumps the epoch")
	assert.EqualValues(t, 1, fixture.refreshCount(mainURI), "every open document refreshes")
	assert.EqualValues(t, 1, fixture.refreshCount(otherURI))
	assert.EqualValues(t, "1.1", fixture.engine.Version(mainURI))

	matched := fixture.engine.Resolve("react", mainURI)
	assert.True(t, matched.Matched)
	assert.True(t, matched.Pending)
	fixture.awaitIdle(t)
	assert.EqualValues(t, module.KindScript, fixture.engine.Resolve("react", mainURI).Kind)
	assert.EqualValues(t, 1, fixture.fetcher.fetched(reactURL))
}
