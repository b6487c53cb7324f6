package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-kit/log/level"

	"github.com/go-drift/listkit/pkg/listitem"
	"github.com/go-drift/listkit/pkg/listview"
)

const defaultRenderWidth = 360

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Write a PNG snapshot of one viewport of the list",
		Long: `Lay the configured list out at a scroll offset and write the visible
rows to a PNG file.

Usage:
  listkit render <out.png> [--offset PX] [--width PX]

Flags:
  --offset PX   Scroll offset in pixels (default: 0)
  --width PX    Image width in pixels (default: 360)`,
		Usage: "listkit render <out.png> [--offset PX] [--width PX]",
		Run:   runRender,
	})
}

type renderOptions struct {
	out    string
	offset float64
	width  int
}

func parseRenderArgs(args []string) (renderOptions, error) {
	opts := renderOptions{width: defaultRenderWidth}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--offset", "--width":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, fmt.Errorf("%s requires a value", name)
				}
				value = args[i+1]
				i++
			}
			if name == "--offset" {
				f, err := strconv.ParseFloat(value, 64)
				if err != nil || f < 0 {
					return opts, fmt.Errorf("invalid --offset %q", value)
				}
				opts.offset = f
			} else {
				n, err := strconv.Atoi(value)
				if err != nil || n <= 0 {
					return opts, fmt.Errorf("invalid --width %q", value)
				}
				opts.width = n
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unknown flag %q", arg)
			}
			if opts.out != "" {
				return opts, fmt.Errorf("unexpected argument %q", arg)
			}
			opts.out = arg
		}
	}
	if opts.out == "" {
		return opts, fmt.Errorf("output file is required\n\nUsage: listkit render <out.png>")
	}
	return opts, nil
}

func runRender(env *Env, args []string) error {
	opts, err := parseRenderArgs(args)
	if err != nil {
		return err
	}
	cfg, err := env.Config()
	if err != nil {
		return err
	}
	logger := env.Logger(cfg.LogLevel)

	v, _, err := newSession(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer v.Dispose()
	v.Layout(opts.offset, cfg.Viewport)

	img, err := v.Snapshot(opts.width, func(li *listitem.ListItem) string {
		return li.Child().(*rowLabel).text
	})
	if err != nil {
		return err
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.out, err)
	}
	if err := listview.WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}

	start, end := v.Range()
	level.Info(logger).Log("msg", "wrote snapshot", "path", opts.out, "start", start, "end", end)
	return nil
}
