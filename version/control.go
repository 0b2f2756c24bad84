package version

import (
	"strconv"
	"sync"
	"sync/atomic"
)

type (
	//Clock derives the file versions reported to the compiler host. A
	//reported version folds the import map epoch together with the file's
	//intrinsic edit version and a per file adjustment, so that a settled
	//background fetch or an import map swap both surface to the host as a
	//version change.
	Clock struct {
		epoch  int64
		mux    sync.RWMutex
		deltas map[string]int64
	}
)

//Epoch returns the current import map epoch.
func (c *Clock) Epoch() int64 {
	return atomic.LoadInt64(&c.epoch)
}

//BumpEpoch advances the epoch, changing every reported version at once.
func (c *Clock) BumpEpoch() int64 {
	return atomic.AddInt64(&c.epoch, 1)
}

//Rollback decrements the adjustment for the supplied URI. The host diffs
//reported versions to decide whether to re resolve a file, so rolling a file
//back makes its next reported version differ without touching the document.
func (c *Clock) Rollback(URI string) {
	c.mux.Lock()
	c.deltas[URI]--
	c.mux.Unlock()
}

//Delta returns the accumulated adjustment for the supplied URI.
func (c *Clock) Delta(URI string) int64 {
	c.mux.RLock()
	ret := c.deltas[URI]
	c.mux.RUnlock()
	return ret
}

//Forget drops the adjustment for a closed document.
func (c *Clock) Forget(URI string) {
	c.mux.Lock()
	delete(c.deltas, URI)
	c.mux.Unlock()
}

//Version formats the version reported for a file given its intrinsic edit
//version: "{epoch}.{intrinsic+delta}".
func (c *Clock) Version(URI string, intrinsic int64) string {
	return strconv.FormatInt(c.Epoch(), 10) + "." + strconv.FormatInt(intrinsic+c.Delta(URI), 10)
}

//New creates a version clock.
func New() *Clock {
	return &Clock{deltas: make(map[string]int64)}
}
