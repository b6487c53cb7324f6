package cmd

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/listkit/cmd/listkit/internal/config"
	"github.com/go-drift/listkit/pkg/listitem"
	"github.com/go-drift/listkit/pkg/listview"
)

func init() {
	RegisterCommand(&Command{
		Name:  "scroll",
		Short: "Scroll the configured list and report item lifecycle counts",
		Long: `Scroll a synthetic list from top to bottom, one step at a time,
and report how many list items were set up, bound, unbound and torn down.

The list is described by listkit.yaml (list.items, list.item_extent,
list.viewport, list.step, ...). Set log.level to debug to see every layout.

Usage:
  listkit scroll`,
		Usage: "listkit scroll",
		Run:   runScroll,
	})
}

// rowLabel is the child created for every list item.
type rowLabel struct {
	text string
}

type scrollStats struct {
	Layouts    int
	Setups     int
	Binds      int
	Unbinds    int
	Teardowns  int
	MaxVisible int
	Overflows  int
}

// newSession builds a view over a synthetic model whose factory counts
// lifecycle events into the returned stats.
func newSession(cfg *config.Resolved, logger log.Logger, reg prometheus.Registerer) (*listview.View, *scrollStats, error) {
	stats := &scrollStats{}
	f := &listitem.SignalFactory{}
	f.OnSetup(func(li *listitem.ListItem) {
		stats.Setups++
		li.SetChild(&rowLabel{})
	})
	f.OnBind(func(li *listitem.ListItem) {
		stats.Binds++
		li.Child().(*rowLabel).text = li.Item().(string)
	})
	f.OnUnbind(func(li *listitem.ListItem) {
		stats.Unbinds++
		li.Child().(*rowLabel).text = ""
	})
	f.OnTeardown(func(*listitem.ListItem) {
		stats.Teardowns++
	})

	model := listview.FuncModel{
		N:  cfg.Items,
		Fn: func(i int) any { return fmt.Sprintf("%s item %d", cfg.AppName, i) },
	}
	v, err := listview.New(model, f, listview.Options{
		ItemExtent:  cfg.ItemExtent,
		CacheExtent: cfg.CacheExtent,
		CacheItems:  cfg.CacheItems,
		SpareItems:  cfg.SpareItems,
		Selected:    func(p int) bool { return p == 0 },
		Logger:      logger,
		Registerer:  reg,
	})
	if err != nil {
		return nil, nil, err
	}
	return v, stats, nil
}

// scrollThrough lays the view out at every step from the top until the last
// item is visible.
func scrollThrough(v *listview.View, cfg *config.Resolved, stats *scrollStats) {
	last := float64(cfg.Items)*cfg.ItemExtent - cfg.Viewport
	for offset := 0.0; ; offset += cfg.Step {
		if offset > last {
			offset = max(last, 0)
		}
		if v.Layout(offset, cfg.Viewport) {
			stats.Layouts++
			if v.Overflowed() {
				stats.Overflows++
			}
		}
		stats.MaxVisible = max(stats.MaxVisible, len(v.Visible()))
		if offset >= last {
			return
		}
	}
}

func runScroll(env *Env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v\n\nUsage: listkit scroll", args)
	}
	cfg, err := env.Config()
	if err != nil {
		return err
	}
	logger := env.Logger(cfg.LogLevel)

	v, stats, err := newSession(cfg, logger, nil)
	if err != nil {
		return err
	}
	scrollThrough(v, cfg, stats)
	v.Dispose()

	level.Info(logger).Log("msg", "scroll complete", "app", cfg.AppName, "items", cfg.Items, "layouts", stats.Layouts)
	printStats(env, stats)
	return nil
}

func printStats(env *Env, s *scrollStats) {
	fmt.Fprintf(env.Stdout, "layouts:      %d\n", s.Layouts)
	fmt.Fprintf(env.Stdout, "setups:       %d\n", s.Setups)
	fmt.Fprintf(env.Stdout, "binds:        %d\n", s.Binds)
	fmt.Fprintf(env.Stdout, "unbinds:      %d\n", s.Unbinds)
	fmt.Fprintf(env.Stdout, "teardowns:    %d\n", s.Teardowns)
	fmt.Fprintf(env.Stdout, "max visible:  %d\n", s.MaxVisible)
	fmt.Fprintf(env.Stdout, "overflows:    %d\n", s.Overflows)
}
