package resolve

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs/file"
	"github.com/viant/afs/mem"
	"github.com/viant/modly/content"
	"github.com/viant/modly/document"
	"github.com/viant/modly/host"
	"github.com/viant/modly/importmap"
	"github.com/viant/modly/metric"
	"github.com/viant/modly/module"
	"github.com/viant/modly/refresh"
	"github.com/viant/modly/scan"
	"github.com/viant/modly/shared/logging"
	"github.com/viant/modly/version"
)

//DefaultCacheURL locates the content cache when none was configured.
const DefaultCacheURL = "mem://localhost/modly/cache"

//maxResolveSteps bounds the redirect walk of a single resolution.
const maxResolveSteps = 16

type (
	//Engine answers the compiler host's synchronous module resolution
	//callback and drives the asynchronous fetches needed to make those
	//answers converge. Every Resolve call returns immediately with best
	//current knowledge; missing information is acquired in the background
	//and surfaced by rolling back the dependent file's version and firing
	//the diagnostics refresh signal, so the host asks again and eventually
	//observes the settled classification.
	//
	//One engine serves one worker session and owns its module tables,
	//pending operations and redirect suggestions.
	Engine struct {
		id        string
		ctx       context.Context
		cache     *content.Service
		workspace host.Workspace
		documents *document.Cache
		store     *module.Store
		clock     *version.Clock
		signal    *refresh.Signal
		logger    logging.Logger
		metrics   *engineMetrics
		onError   func(err error)

		localSchemes map[string]bool

		mux         sync.RWMutex
		aMap        *importmap.ImportMap
		pending     map[string]*pendingFetch
		dependents  map[string]map[string]bool
		visited     map[string]bool
		suggestions *suggestions
		inflight    sync.WaitGroup
	}

	//pendingFetch coalesces concurrent demand for one URL into a single
	//background operation; dependents collects every file waiting on the
	//settlement.
	pendingFetch struct {
		url        string
		specifier  string
		forced     bool
		started    time.Time
		dependents map[string]bool
	}
)

//ID returns the engine session identifier.
func (e *Engine) ID() string {
	return e.id
}

//ImportMap returns the import map currently in use.
func (e *Engine) ImportMap() *importmap.ImportMap {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.aMap
}

//SetImportMap swaps the import map and bumps the version epoch, invalidating
//resolution for every file in one step.
func (e *Engine) SetImportMap(aMap *importmap.ImportMap) {
	if aMap == nil {
		aMap = &importmap.ImportMap{Imports: map[string]string{}}
	}
	e.mux.Lock()
	e.aMap = aMap
	e.mux.Unlock()
	epoch := e.clock.BumpEpoch()
	e.logger.Info("import map changed", "engine", e.id, "epoch", epoch, "sourceRef", aMap.SourceRef)
	for _, URI := range e.documents.URIs() {
		e.signal.Refresh(URI)
	}
}

//Modules exposes the remote module tables owned by this engine.
func (e *Engine) Modules() *module.Store {
	return e.store
}

//Documents returns the shared parsed document cache.
func (e *Engine) Documents() *document.Cache {
	return e.documents
}

//Clock returns the version clock.
func (e *Engine) Clock() *version.Clock {
	return e.clock
}

//Signal returns the diagnostics refresh registry.
func (e *Engine) Signal() *refresh.Signal {
	return e.signal
}

//ContentCache returns the persistent fetch cache.
func (e *Engine) ContentCache() *content.Service {
	return e.cache
}

//Resolve answers a single specifier lookup on behalf of the containing file.
//It never blocks: when the answer needs network or workspace activity the
//call returns a provisional resolution carrying the literal specifier and
//the settlement re triggers the host through the version clock.
func (e *Engine) Resolve(specifier, containingURL string) Resolution {
	ret := Resolution{Specifier: specifier}
	target, matched := importmap.Resolve(e.ImportMap(), specifier, containingURL)
	ret.Matched = matched
	if !matched && schemeOf(specifier) == "" && !isRelativeSpecifier(specifier) {
		//a bare specifier outside the import map surfaces as the host's own
		//unresolved module diagnostic
		e.metrics.resolve.IncrementValue(metric.NoMatch)
		return ret
	}
	base := containingURL
	if matched {
		if sourceRef := e.ImportMap().SourceRef; sourceRef != "" {
			base = sourceRef
		}
	}
	URL := absoluteURL(target, base)
	if URL == "" {
		e.metrics.resolve.IncrementValue(metric.NoMatch)
		return ret
	}
	URL = withDeclarationExt(URL, containingURL)
	ret.Resolved = URL

	if parent := e.store.Lookup(containingURL); parent != nil && parent.Kind == module.KindScript {
		//dependencies of a previously fetched plain script are not
		//transitively re resolved
		ret.Kind = module.KindScript
		if known := e.store.Lookup(URL); known != nil {
			if known.Kind == module.KindRedirect {
				if target := e.store.Lookup(known.Target); target != nil {
					known = target
				}
			}
			ret.Kind = known.Kind
			if known.IsResolved() {
				ret.Resolved = known.URL
			}
		}
		e.metrics.resolve.IncrementValue(metric.Success)
		return ret
	}

	switch scheme := schemeOf(URL); {
	case e.localSchemes[scheme]:
		ret = e.resolveLocal(ret, URL, containingURL)
	case scheme == SchemeHTTP || scheme == SchemeHTTPS:
		ret = e.resolveRemote(ret, URL, containingURL, matched)
	default:
		e.metrics.resolve.IncrementValue(metric.NoMatch)
		return ret
	}
	switch {
	case ret.Pending:
		e.metrics.resolve.IncrementValue(metric.Pending)
	case ret.IsResolved():
		e.metrics.resolve.IncrementValue(metric.Success)
	default:
		e.metrics.resolve.IncrementValue(metric.Error)
	}
	return ret
}

//resolveLocal answers a project file specifier: an already open document
//resolves immediately, anything else is materialized through the workspace
//collaborator in the background.
func (e *Engine) resolveLocal(ret Resolution, URL, dependent string) Resolution {
	if e.documents.Has(URL) {
		ret.Kind = module.KindScript
		if module.IsDeclarationURL(URL) {
			ret.Kind = module.KindDeclaration
		}
		return ret
	}
	if record := e.store.Lookup(URL); record != nil && record.Kind == module.KindRejected {
		ret.Kind = module.KindRejected
		return ret
	}
	if e.workspace == nil {
		e.store.Put(module.NewRejected(URL, "no workspace configured"))
		ret.Kind = module.KindRejected
		return ret
	}
	e.open(URL, dependent)
	ret.Resolved = ret.Specifier
	ret.Pending = true
	return ret
}

//resolveRemote answers a network specifier from the module tables, starting
//a background acquisition when the URL was never seen before.
func (e *Engine) resolveRemote(ret Resolution, URL, dependent string, matched bool) Resolution {
	target := URL
	e.recordDependent(target, dependent)
	misses := 0
	for step := 0; step < maxResolveSteps; step++ {
		record := e.store.Lookup(target)
		if record == nil {
			forced := matched || IsPackageVersionURL(target) || IsJSXRuntimeURL(target)
			e.beginFetch(target, dependent, ret.Specifier, forced)
			ret.Resolved = ret.Specifier
			ret.Pending = true
			return ret
		}
		switch record.Kind {
		case module.KindRedirect:
			if !matched {
				e.suggest(dependent, ret.Specifier, record.Target)
			}
			target = record.Target
			ret.Resolved = target
			e.recordDependent(target, dependent)
			continue
		case module.KindUnresolved:
			if e.joinPending(target, dependent) {
				ret.Resolved = ret.Specifier
				ret.Pending = true
				return ret
			}
			if misses++; misses == 1 {
				//the acquisition may have settled mid read
				continue
			}
			//terminal for the session, eligible only for an explicit fetch
			ret.Kind = module.KindUnresolved
			return ret
		case module.KindRejected:
			ret.Kind = module.KindRejected
			return ret
		case module.KindScript:
			if typesURL := e.store.TypesURL(record.URL); typesURL != "" {
				//the declaration, not the script body, is the type source
				ret.Resolved = typesURL
				ret.Kind = module.KindDeclaration
				return ret
			}
			ret.Kind = module.KindScript
			return ret
		case module.KindDeclaration, module.KindAmbientLib:
			ret.Resolved = record.URL
			ret.Kind = record.Kind
			return ret
		}
	}
	ret.Kind = module.KindRejected
	return ret
}

//FetchModule is the explicit retry command: it clears any terminal state for
//the URL, forces a network fetch and settles the outcome like any background
//acquisition, rolling back every file that ever depended on the URL.
func (e *Engine) FetchModule(ctx context.Context, URL string) error {
	specifier, _ := e.store.Specifier(URL)
	e.store.Invalidate(URL)
	response, err := e.cache.Fetch(ctx, URL)
	record, outcome := e.classifyOutcome(URL, specifier, response, err)
	e.putSettled(URL, record)
	e.rollbackDependents(URL)
	e.logger.Info("module fetched", "engine", e.id, "url", URL, "kind", record.Kind.String())
	return outcome
}

//Suggestions returns the redirect suggestions recorded for a file.
func (e *Engine) Suggestions(file string) []RedirectSuggestion {
	return e.suggestions.list(file)
}

//SpecifierFor returns the human specifier a module URL was imported as, or
//the URL itself when unknown.
func (e *Engine) SpecifierFor(URL string) string {
	if specifier, ok := e.store.Specifier(URL); ok {
		return specifier
	}
	return URL
}

//ScriptVersion reports the version the host should see for a file, folding
//the import map epoch and rollback adjustments with the intrinsic version
//supplied by the caller.
func (e *Engine) ScriptVersion(URI string, intrinsic int64) string {
	return e.clock.Version(URI, intrinsic)
}

//Version reports the combined version for a URI: open documents use their
//edit version, fetched modules a constant intrinsic version, both folded
//with the epoch and rollback adjustment.
func (e *Engine) Version(URI string) string {
	intrinsic := int64(1)
	if doc := e.documents.Latest(URI); doc != nil {
		intrinsic = doc.Version
	}
	return e.clock.Version(URI, intrinsic)
}

//CloseDocument releases per document state when the host reports a close.
func (e *Engine) CloseDocument(URI string) {
	e.documents.Delete(URI)
	e.clock.Forget(URI)
	e.suggestions.drop(URI)
}

//AwaitIdle blocks until every background acquisition settled. It exists for
//command line usage and tests; the resolution callback itself never waits.
func (e *Engine) AwaitIdle(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

//open coalesces workspace materialization of a project file.
func (e *Engine) open(URL, dependent string) {
	e.mux.Lock()
	if pf, ok := e.pending[URL]; ok {
		pf.dependents[dependent] = true
		e.mux.Unlock()
		return
	}
	pf := &pendingFetch{url: URL, started: time.Now(), dependents: map[string]bool{dependent: true}}
	e.pending[URL] = pf
	e.inflight.Add(1)
	e.mux.Unlock()
	go e.openModel(pf)
}

//openModel materializes a project file through the workspace collaborator.
func (e *Engine) openModel(pf *pendingFetch) {
	defer e.inflight.Done()
	onDone := e.metrics.open.Begin(pf.started)
	defer onDone(time.Now())
	opened, err := e.workspace.OpenModel(e.ctx, pf.url)
	if err != nil {
		//not a classification outcome: leave no record so a later pass retries
		e.abandon(pf)
		e.metrics.open.IncrementValue(metric.Error)
		e.onError(err)
		return
	}
	if !opened {
		e.metrics.open.IncrementValue(metric.Error)
		e.logger.Debug("workspace file not found", "engine", e.id, "uri", pf.url)
		e.settle(pf, module.NewRejected(pf.url, (&WorkspaceNotFoundError{URI: pf.url}).Error()))
		return
	}
	e.metrics.open.IncrementValue(metric.Success)
	//the opened document lives in the document cache; no module record needed
	e.settle(pf, nil)
}

//beginFetch starts a background acquisition for a URL unless one is already
//in flight, in which case the dependent joins it.
func (e *Engine) beginFetch(URL, dependent, specifier string, forced bool) {
	e.mux.Lock()
	if pf, ok := e.pending[URL]; ok {
		pf.dependents[dependent] = true
		e.mux.Unlock()
		return
	}
	pf := &pendingFetch{
		url:        URL,
		specifier:  specifier,
		forced:     forced,
		started:    time.Now(),
		dependents: map[string]bool{dependent: true},
	}
	e.pending[URL] = pf
	e.store.Ensure(URL)
	e.inflight.Add(1)
	e.mux.Unlock()
	go e.fetchModule(pf)
}

//fetchModule acquires one remote module in the background. Import map
//resolved specifiers and well known CDN URLs go straight to the network;
//everything else probes the cache only, so strings that merely look like
//URLs never cause speculative traffic.
func (e *Engine) fetchModule(pf *pendingFetch) {
	defer e.inflight.Done()
	onDone := e.metrics.fetch.Begin(pf.started)
	defer onDone(time.Now())
	var response *content.Response
	var err error
	if pf.forced {
		response, err = e.cache.Fetch(e.ctx, pf.url)
	} else {
		response, err = e.cache.Query(e.ctx, pf.url)
	}
	record, outcome := e.classifyOutcome(pf.url, pf.specifier, response, err)
	switch {
	case outcome == nil:
		e.metrics.fetch.IncrementValue(metric.Success)
	case record.Kind == module.KindUnresolved:
		e.metrics.fetch.IncrementValue(metric.NoMatch)
		e.logger.Debug("module not found in cache", "engine", e.id, "url", pf.url)
	default:
		e.metrics.fetch.IncrementValue(metric.Error)
		e.logger.Warn("module acquisition failed", "engine", e.id, "url", pf.url, "error", outcome)
	}
	e.settle(pf, record)
}

//classifyOutcome derives the module record for a fetch outcome together with
//the taxonomy error describing a non success, nil on success.
func (e *Engine) classifyOutcome(URL, specifier string, response *content.Response, err error) (*module.Record, error) {
	if err != nil {
		cause := &NetworkError{URL: URL, Cause: err}
		return module.NewRejected(URL, cause.Error()), cause
	}
	if response == nil {
		return module.NewUnresolved(URL), &NotFoundInCacheError{URL: URL}
	}
	if typesURL := response.TypesURL(); typesURL != "" {
		if record := e.acquireTypes(URL, specifier, response, typesURL); record != nil {
			return record, nil
		}
	}
	record := module.Classify(URL, response)
	switch record.Kind {
	case module.KindRejected:
		return record, &UnsupportedContentTypeError{URL: record.URL, ContentType: response.ContentType(), Reason: record.Reason}
	case module.KindDeclaration:
		e.rememberSpecifier(record.URL, specifier)
		e.scheduleReferences(record)
	}
	return record, nil
}

//acquireTypes follows the declaration pointer header: the pointed to
//declaration, not the script body, becomes the module's type source. The
//specifier to declaration mapping is kept so hovers can present the human
//specifier instead of the opaque declaration URL.
func (e *Engine) acquireTypes(URL, specifier string, response *content.Response, typesURL string) *module.Record {
	scriptURL := response.URL
	if scriptURL == "" {
		scriptURL = URL
	}
	declURL := absoluteURL(typesURL, scriptURL)
	if declURL == "" {
		return nil
	}
	declResponse, err := e.cache.Fetch(e.ctx, declURL)
	if err != nil {
		//best effort: fall back to the script body as the type source
		e.logger.Warn("failed to acquire types", "engine", e.id, "url", declURL, "error", err)
		return nil
	}
	declRecord := e.store.Put(module.Classify(declURL, declResponse))
	if declRecord.Kind != module.KindDeclaration {
		e.logger.Warn("declaration pointer target is not a declaration", "engine", e.id, "url", declURL, "kind", declRecord.Kind.String())
		return nil
	}
	scriptRecord := module.Classify(URL, response)
	e.store.SetTypes(scriptRecord.URL, declRecord.URL)
	e.rememberSpecifier(declRecord.URL, specifier)
	e.rememberSpecifier(scriptRecord.URL, specifier)
	e.scheduleReferences(declRecord)
	return scriptRecord
}

//scheduleReferences prefetches declarations referenced through directive
//comments in already fetched declaration text. Fetches are best effort and a
//visited set bounds them, so cyclic references terminate.
func (e *Engine) scheduleReferences(record *module.Record) {
	if len(record.Content) == 0 {
		return
	}
	e.visit(record.URL)
	source := scan.Scan(record.Content)
	for i := range source.References {
		reference := source.References[i]
		switch reference.Kind {
		case "path", "types", "lib":
		default:
			continue
		}
		URL := absoluteURL(reference.Value, record.URL)
		if URL == "" {
			continue
		}
		URL = withDeclarationExt(URL, record.URL)
		if !e.visit(URL) {
			continue
		}
		e.inflight.Add(1)
		go e.fetchReference(URL, reference.Kind)
	}
}

//fetchReference acquires one referenced declaration; failures are marked
//rejected without surfacing diagnostics.
func (e *Engine) fetchReference(URL, kind string) {
	defer e.inflight.Done()
	if existing := e.store.Lookup(URL); existing != nil && existing.Kind != module.KindUnresolved {
		return
	}
	response, err := e.cache.Fetch(e.ctx, URL)
	if err != nil {
		e.store.Put(module.NewRejected(URL, err.Error()))
		return
	}
	record := module.Classify(URL, response)
	if record.Kind == module.KindDeclaration && kind == "lib" {
		record = module.NewAmbientLib(record.URL, record.Content)
	}
	record = e.store.Put(record)
	if record.Kind == module.KindDeclaration || record.Kind == module.KindAmbientLib {
		e.scheduleReferences(record)
	}
}

//visit returns true the first time a reference URL is seen.
func (e *Engine) visit(URL string) bool {
	e.mux.Lock()
	defer e.mux.Unlock()
	if e.visited[URL] {
		return false
	}
	e.visited[URL] = true
	return true
}

//joinPending adds the dependent to an in flight operation, returning false
//when none exists.
func (e *Engine) joinPending(URL, dependent string) bool {
	e.mux.Lock()
	defer e.mux.Unlock()
	pf, ok := e.pending[URL]
	if ok && dependent != "" {
		pf.dependents[dependent] = true
	}
	return ok
}

//recordDependent remembers which files asked for a URL so an explicit fetch
//command can force them to re resolve.
func (e *Engine) recordDependent(URL, dependent string) {
	if dependent == "" {
		return
	}
	e.mux.Lock()
	defer e.mux.Unlock()
	set, ok := e.dependents[URL]
	if !ok {
		set = make(map[string]bool)
		e.dependents[URL] = set
	}
	set[dependent] = true
}

//abandon clears a pending operation without settling it.
func (e *Engine) abandon(pf *pendingFetch) {
	e.mux.Lock()
	delete(e.pending, pf.url)
	e.mux.Unlock()
}

//putSettled stores a settled record, adding a redirect companion under the
//requested URL when the classification landed elsewhere.
func (e *Engine) putSettled(URL string, record *module.Record) *module.Record {
	effective := e.store.Put(record)
	if record.URL != URL {
		e.store.Put(module.NewRedirect(URL, record.URL))
	}
	return effective
}

//settle records a fetch outcome and forces every dependent file to be re
//resolved: classification first, then pending cleanup, then exactly one
//version rollback and refresh per dependent.
func (e *Engine) settle(pf *pendingFetch, record *module.Record) {
	if record != nil {
		record = e.putSettled(pf.url, record)
	}
	e.mux.Lock()
	delete(e.pending, pf.url)
	dependents := make([]string, 0, len(pf.dependents))
	for dependent := range pf.dependents {
		dependents = append(dependents, dependent)
	}
	e.mux.Unlock()
	sort.Strings(dependents)
	for _, dependent := range dependents {
		e.clock.Rollback(dependent)
		e.signal.Refresh(dependent)
	}
	if record != nil && e.logger.IsDebugEnabled() {
		e.logger.Debug("module settled", "engine", e.id, "url", pf.url, "kind", record.Kind.String())
	}
}

//suggest records a redirect suggestion for the quick fix that updates the
//literal specifier; import map resolved specifiers never get one, the map
//already owns the mapping.
func (e *Engine) suggest(file, specifier, proposedURL string) {
	if file == "" || specifier == "" {
		return
	}
	var span scan.Span
	if source := e.documents.Derived(file); source != nil {
		for i := range source.Imports {
			if source.Imports[i].Specifier == specifier {
				span = source.Imports[i].Span
				break
			}
		}
	}
	e.suggestions.add(file, specifier, span, proposedURL)
}

//rollbackDependents rolls back every file that ever resolved the URL.
func (e *Engine) rollbackDependents(URL string) {
	e.mux.RLock()
	dependents := make([]string, 0, len(e.dependents[URL]))
	for dependent := range e.dependents[URL] {
		dependents = append(dependents, dependent)
	}
	e.mux.RUnlock()
	sort.Strings(dependents)
	for _, dependent := range dependents {
		e.clock.Rollback(dependent)
		e.signal.Refresh(dependent)
	}
}

func (e *Engine) rememberSpecifier(URL, specifier string) {
	if URL == "" || specifier == "" {
		return
	}
	e.store.SetSpecifier(URL, specifier)
}

//New creates a resolution engine for one worker session.
func New(ctx context.Context, opts ...Option) *Engine {
	ret := &Engine{
		id:          uuid.New().String(),
		ctx:         ctx,
		pending:     make(map[string]*pendingFetch),
		dependents:  make(map[string]map[string]bool),
		visited:     make(map[string]bool),
		suggestions: newSuggestions(),
		localSchemes: map[string]bool{
			file.Scheme: true,
			mem.Scheme:  true,
		},
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.ctx == nil {
		ret.ctx = context.Background()
	}
	if ret.aMap == nil {
		ret.aMap = &importmap.ImportMap{Imports: map[string]string{}}
	}
	if ret.store == nil {
		ret.store = module.NewStore()
	}
	if ret.documents == nil {
		ret.documents = document.NewCache()
	}
	if ret.clock == nil {
		ret.clock = version.New()
	}
	if ret.signal == nil {
		ret.signal = refresh.New()
	}
	if ret.logger == nil {
		ret.logger = logging.Default()
	}
	if ret.cache == nil {
		ret.cache = content.New(DefaultCacheURL)
	}
	if ret.metrics == nil {
		ret.metrics = newEngineMetrics(metric.New(nil, metricLocation()))
	}
	if ret.onError == nil {
		logger, id := ret.logger, ret.id
		ret.onError = func(err error) {
			logger.Error("workspace operation failed", "engine", id, "error", err)
		}
	}
	return ret
}
