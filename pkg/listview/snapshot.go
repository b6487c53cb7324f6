package listview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/listkit/pkg/errors"
	"github.com/go-drift/listkit/pkg/listitem"
)

var (
	snapshotBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	snapshotStripe     = color.RGBA{R: 0xf2, G: 0xf2, B: 0xf5, A: 0xff}
	snapshotSelected   = color.RGBA{R: 0xc8, G: 0xdc, B: 0xff, A: 0xff}
	snapshotText       = color.RGBA{R: 0x1c, G: 0x1c, B: 0x1e, A: 0xff}
)

const snapshotInset = 8

// LabelFunc returns the text drawn for a row.
type LabelFunc func(li *listitem.ListItem) string

// Snapshot draws the active items as rows of ItemExtent height into a new
// image of the given width. Rows alternate background, selected rows are
// highlighted, and each row shows its label in a fixed 7x13 font. A nil
// label draws the bound item with %v.
func (v *View) Snapshot(width int, label LabelFunc) (*image.RGBA, error) {
	if v.disposed {
		return nil, &errors.KitError{Op: "listview.Snapshot", Kind: errors.KindRender, Err: fmt.Errorf("view is disposed"), Position: -1}
	}
	if v.opts.ItemExtent <= 0 {
		return nil, &errors.KitError{Op: "listview.Snapshot", Kind: errors.KindRender, Err: fmt.Errorf("snapshot requires a fixed item extent"), Position: -1}
	}
	if width <= 0 {
		return nil, &errors.KitError{Op: "listview.Snapshot", Kind: errors.KindRender, Err: fmt.Errorf("invalid width %d", width), Position: -1}
	}
	if label == nil {
		label = func(li *listitem.ListItem) string { return fmt.Sprint(li.Item()) }
	}

	items := v.Visible()
	rowHeight := int(v.opts.ItemExtent)
	if rowHeight < 1 {
		rowHeight = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, rowHeight*max(len(items), 1)))
	draw.Draw(img, img.Bounds(), image.NewUniform(snapshotBackground), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(snapshotText),
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	for i, li := range items {
		row := image.Rect(0, i*rowHeight, width, (i+1)*rowHeight)
		switch {
		case li.Selected():
			draw.Draw(img, row, image.NewUniform(snapshotSelected), image.Point{}, draw.Src)
		case li.Position()%2 == 1:
			draw.Draw(img, row, image.NewUniform(snapshotStripe), image.Point{}, draw.Src)
		}
		baseline := row.Min.Y + (rowHeight+ascent)/2
		d.Dot = fixed.P(snapshotInset, baseline)
		d.DrawString(label(li))
	}
	return img, nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return &errors.KitError{Op: "listview.WritePNG", Kind: errors.KindRender, Err: err, Position: -1}
	}
	return nil
}
