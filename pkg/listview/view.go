// Package listview implements a headless virtualized list.
//
// A View keeps list items only for the model positions inside the viewport
// plus a cache region, and drives them through a [listitem.Factory] as the
// list scrolls. Items that leave the visible range stay bound in a small
// LRU cache so scrolling back does not rebind them; items evicted from that
// cache are unbound and kept as spares, so scrolling forward binds recycled
// items instead of setting up new ones.
//
// Example:
//
//	f := &listitem.SignalFactory{}
//	f.OnSetup(func(li *listitem.ListItem) { li.SetChild(&Row{}) })
//	f.OnBind(func(li *listitem.ListItem) { li.Child().(*Row).Title = li.Item().(string) })
//
//	view, err := listview.New(listview.SliceModel[string](titles), f, listview.Options{
//	    ItemExtent:  56,
//	    CacheExtent: 200,
//	})
//	...
//	view.Layout(scrollOffset, viewportHeight)
//	for _, li := range view.Visible() {
//	    paint(li)
//	}
//	view.Dispose()
//
// A View is not safe for concurrent use.
package listview

import (
	"fmt"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/listkit/pkg/errors"
	"github.com/go-drift/listkit/pkg/listitem"
	"github.com/go-drift/listkit/pkg/smallarray"
)

// inlineItems is the number of visible items held without allocating.
// Typical phone viewports show well under this many rows.
const inlineItems = 32

const (
	// DefaultCacheItems is the default number of bound items kept outside
	// the visible range.
	DefaultCacheItems = 16
	// DefaultSpareItems is the default number of unbound items kept for
	// reuse.
	DefaultSpareItems = 8
)

// Options configures a View.
type Options struct {
	// ItemExtent is the fixed extent of each item along the scroll axis.
	// Required for virtualization; if 0 every item is visible.
	ItemExtent float64
	// CacheExtent is the number of pixels beyond the viewport whose items are
	// kept active.
	CacheExtent float64
	// PaddingLeading is the padding before the first item.
	PaddingLeading float64
	// CacheItems bounds the LRU of bound items outside the visible range.
	// Zero means DefaultCacheItems; negative disables the cache.
	CacheItems int
	// SpareItems bounds the unbound items kept for reuse. Zero means
	// DefaultSpareItems; negative keeps none.
	SpareItems int
	// Selected reports whether a position is selected. Consulted on bind.
	Selected func(position int) bool
	// Logger receives debug output. Defaults to a no-op logger.
	Logger log.Logger
	// Registerer registers the view metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// View is a virtualized list over a Model.
type View struct {
	model   Model
	factory listitem.Factory
	opts    Options
	logger  log.Logger
	metrics *metrics

	// Active items alternate between two arrays so a layout can read the
	// previous range while building the next one.
	bufs   [2][inlineItems]*listitem.ListItem
	active [2]smallarray.Array[*listitem.ListItem]
	cur    int

	start, end       int
	offset, viewport float64
	laidOut          bool

	cache  *lru.Cache[int, *listitem.ListItem]
	taking *listitem.ListItem
	spares []*listitem.ListItem

	disposed bool
}

// New creates a View. Call Layout to populate it and Dispose to release its
// items.
func New(model Model, factory listitem.Factory, opts Options) (*View, error) {
	if model == nil {
		return nil, &errors.KitError{Op: "listview.New", Kind: errors.KindConfig, Err: fmt.Errorf("model is nil"), Position: -1}
	}
	if factory == nil {
		return nil, &errors.KitError{Op: "listview.New", Kind: errors.KindConfig, Err: fmt.Errorf("factory is nil"), Position: -1}
	}
	if opts.ItemExtent < 0 || math.IsNaN(opts.ItemExtent) {
		return nil, &errors.KitError{Op: "listview.New", Kind: errors.KindConfig, Err: fmt.Errorf("invalid item extent %v", opts.ItemExtent), Position: -1}
	}
	if opts.CacheItems == 0 {
		opts.CacheItems = DefaultCacheItems
	}
	if opts.SpareItems == 0 {
		opts.SpareItems = DefaultSpareItems
	} else if opts.SpareItems < 0 {
		opts.SpareItems = 0
	}

	v := &View{
		model:   model,
		factory: factory,
		opts:    opts,
		logger:  opts.Logger,
		metrics: newMetrics(opts.Registerer),
	}
	if v.logger == nil {
		v.logger = log.NewNopLogger()
	}
	if opts.CacheItems > 0 {
		cache, err := lru.NewWithEvict(opts.CacheItems, v.onEvict)
		if err != nil {
			return nil, &errors.KitError{Op: "listview.New", Kind: errors.KindConfig, Err: err, Position: -1}
		}
		v.cache = cache
	}
	v.active[v.cur].Init(v.bufs[v.cur][:])
	return v, nil
}

// Layout updates the visible range for the given scroll offset and viewport
// extent and reconciles the active items. It reports whether the range
// changed.
func (v *View) Layout(offset, viewport float64) bool {
	if v.disposed {
		return false
	}
	v.offset, v.viewport = offset, viewport
	return v.layout(false)
}

// ItemsChanged rebinds the view after the model changed. Every active and
// cached item is unbound, then the current range is laid out again.
func (v *View) ItemsChanged() {
	if v.disposed {
		return
	}
	if v.cache != nil {
		v.cache.Purge()
	}
	cur := &v.active[v.cur]
	for _, li := range cur.Slice() {
		v.release(li)
	}
	cur.Destroy(nil)
	cur.Init(v.bufs[v.cur][:])
	v.start, v.end = 0, 0
	if v.laidOut {
		v.layout(true)
	}
}

// Visible returns the active items in position order. The slice is only
// valid until the next Layout, ItemsChanged or Dispose.
func (v *View) Visible() []*listitem.ListItem {
	if v.disposed {
		return nil
	}
	return v.active[v.cur].Slice()
}

// Range returns the active position range [start, end).
func (v *View) Range() (start, end int) {
	return v.start, v.end
}

// ItemAt returns the active item bound to position, or nil.
func (v *View) ItemAt(position int) *listitem.ListItem {
	if v.disposed || position < v.start || position >= v.end {
		return nil
	}
	return v.active[v.cur].Get(position - v.start)
}

// Overflowed reports whether the active items outgrew the inline buffer in
// the last layout.
func (v *View) Overflowed() bool {
	return !v.disposed && v.active[v.cur].Overflowed()
}

// Cached returns the number of bound items kept outside the visible range.
func (v *View) Cached() int {
	if v.cache == nil {
		return 0
	}
	return v.cache.Len()
}

// Spares returns the number of unbound items kept for reuse.
func (v *View) Spares() int {
	return len(v.spares)
}

// Dispose unbinds and tears down every item. The view is unusable
// afterwards. Dispose is idempotent.
func (v *View) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	if v.cache != nil {
		v.cache.Purge()
	}
	v.active[v.cur].Destroy(func(li *listitem.ListItem) {
		v.unbind(li)
		v.teardown(li)
	})
	for _, li := range v.spares {
		v.teardown(li)
	}
	v.spares = nil
	v.start, v.end = 0, 0
	v.metrics.active.Set(0)
	v.metrics.cached.Set(0)
}

func (v *View) layout(force bool) bool {
	start, end := v.visibleRange(v.offset, v.viewport)
	if !force && v.laidOut && start == v.start && end == v.end {
		return false
	}
	v.laidOut = true

	cur := &v.active[v.cur]
	next := 1 - v.cur
	nextArr := &v.active[next]
	nextArr.Init(v.bufs[next][:])

	for _, li := range cur.Slice() {
		if p := li.Position(); p < start || p >= end {
			v.park(li)
		}
	}
	for p := start; p < end; p++ {
		if p >= v.start && p < v.end {
			nextArr.Append(cur.Get(p - v.start))
			continue
		}
		nextArr.Append(v.acquire(p))
	}
	cur.Destroy(nil)
	v.cur = next
	v.start, v.end = start, end

	v.metrics.layouts.Inc()
	v.metrics.active.Set(float64(nextArr.Len()))
	v.metrics.cached.Set(float64(v.Cached()))
	if nextArr.Overflowed() {
		v.metrics.migrations.Inc()
	}
	level.Debug(v.logger).Log(
		"msg", "layout",
		"start", start,
		"end", end,
		"overflow", nextArr.Overflowed(),
		"cached", v.Cached(),
		"spares", len(v.spares),
	)
	return true
}

func (v *View) visibleRange(offset, viewport float64) (int, int) {
	count := v.model.Len()
	if count <= 0 {
		return 0, 0
	}
	if v.opts.ItemExtent <= 0 || viewport <= 0 {
		return 0, count
	}
	cache := v.opts.CacheExtent
	if cache < 0 {
		cache = 0
	}
	visibleStart := offset - v.opts.PaddingLeading - cache
	visibleEnd := offset + viewport - v.opts.PaddingLeading + cache
	startIndex := int(math.Floor(visibleStart / v.opts.ItemExtent))
	endIndex := int(math.Ceil(visibleEnd / v.opts.ItemExtent))
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex > count {
		startIndex = count
	}
	if endIndex > count {
		endIndex = count
	}
	if endIndex < startIndex {
		endIndex = startIndex
	}
	return startIndex, endIndex
}

// acquire returns an item bound to position p, preferring a cached item
// still bound to p, then a spare, then a new item.
func (v *View) acquire(p int) *listitem.ListItem {
	if v.cache != nil {
		if li, ok := v.cache.Peek(p); ok {
			v.taking = li
			v.cache.Remove(p)
			v.taking = nil
			return li
		}
	}
	var li *listitem.ListItem
	if n := len(v.spares); n > 0 {
		li = v.spares[n-1]
		v.spares[n-1] = nil
		v.spares = v.spares[:n-1]
	} else {
		li = listitem.New()
		v.factory.Setup(li)
		v.metrics.setups.Inc()
	}
	if v.opts.Selected != nil {
		li.SetSelected(v.opts.Selected(p))
	}
	v.factory.Bind(li, p, v.model.Item(p))
	v.metrics.binds.Inc()
	return li
}

// park moves an item leaving the visible range into the cache.
func (v *View) park(li *listitem.ListItem) {
	if v.cache == nil {
		v.release(li)
		return
	}
	v.cache.Add(li.Position(), li)
}

func (v *View) onEvict(_ int, li *listitem.ListItem) {
	if li == v.taking {
		return
	}
	v.release(li)
}

// release unbinds an item and keeps it as a spare or tears it down.
func (v *View) release(li *listitem.ListItem) {
	v.unbind(li)
	if len(v.spares) < v.opts.SpareItems {
		v.spares = append(v.spares, li)
		return
	}
	v.teardown(li)
}

func (v *View) unbind(li *listitem.ListItem) {
	v.factory.Unbind(li)
	v.metrics.unbinds.Inc()
}

func (v *View) teardown(li *listitem.ListItem) {
	v.factory.Teardown(li)
	v.metrics.teardowns.Inc()
}
