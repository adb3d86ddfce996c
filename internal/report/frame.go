package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/sydleither/spatial-egt/internal/core"
	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/sim"
)

// Phenotype colours used in frames.
var (
	SensitiveColor = color.RGBA{R: 239, G: 124, B: 142, A: 255}
	ResistantColor = color.RGBA{R: 76, G: 149, B: 108, A: 255}
	EmptyColor     = color.RGBA{A: 255}
	labelColor     = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

// labelHeight is the band above the lattices holding model names.
const labelHeight = 16

// PhenotypeRGBA returns the frame colour of p.
func PhenotypeRGBA(p core.Phenotype) color.RGBA {
	if p == core.Resistant {
		return ResistantColor
	}
	return SensitiveColor
}

// FrameRenderer draws the three lattices of a frame side by side, in
// policy order, each site as a Scale×Scale square.
type FrameRenderer struct {
	Scale  int
	Labels bool
}

// NewFrameRenderer creates a renderer with labels enabled.
func NewFrameRenderer(scale int) *FrameRenderer {
	return &FrameRenderer{Scale: max(scale, 1), Labels: true}
}

// Size returns the image size for lattices of w×h sites.
func (r *FrameRenderer) Size(w, h int) (int, int) {
	height := h * r.Scale
	if r.Labels {
		height += labelHeight
	}
	return 3 * w * r.Scale, height
}

// Render draws f into a new image.
func (r *FrameRenderer) Render(f experiment.Frame) *image.RGBA {
	w, h := f.Planes[0].Dims()
	iw, ih := r.Size(w, h)
	img := image.NewRGBA(image.Rect(0, 0, iw, ih))
	draw.Draw(img, img.Bounds(), image.NewUniform(EmptyColor), image.Point{}, draw.Src)

	top := 0
	if r.Labels {
		top = labelHeight
	}

	for i, plane := range f.Planes {
		left := i * w * r.Scale
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p, ok := plane.PhenotypeAt(x, y)
				if !ok {
					continue
				}
				cell := image.Rect(left+x*r.Scale, top+y*r.Scale, left+(x+1)*r.Scale, top+(y+1)*r.Scale)
				draw.Draw(img, cell, image.NewUniform(PhenotypeRGBA(p)), image.Point{}, draw.Src)
			}
		}

		if r.Labels {
			policy := sim.Policies[i]
			label := fmt.Sprintf("%s d%d", policy, f.Tick)
			addLabel(img, left+2, labelHeight-3, label, labelColor)
		}
	}
	return img
}

// addLabel draws a text label onto an image at the specified baseline.
func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}

// FrameFile returns the PNG file name of a frame, e.g. "2Dmodel_tick100.png".
func FrameFile(topology sim.Topology, tick int) string {
	return fmt.Sprintf("%smodel_tick%d.png", topology, tick)
}

// PNGRecorder saves every frame as a PNG in Dir. It implements
// experiment.FrameRecorder.
type PNGRecorder struct {
	Dir      string
	Renderer *FrameRenderer
}

// RecordFrame renders and writes f.
func (r *PNGRecorder) RecordFrame(f experiment.Frame) error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("report: create frame dir: %w", err)
	}
	path := filepath.Join(r.Dir, FrameFile(f.Topology, f.Tick))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create frame: %w", err)
	}
	if err := png.Encode(file, r.Renderer.Render(f)); err != nil {
		file.Close()
		return fmt.Errorf("report: encode frame %s: %w", path, err)
	}
	return file.Close()
}

// Close is a no-op.
func (r *PNGRecorder) Close() error {
	return nil
}

// MovieRecorder appends every frame to an MJPEG AVI file. The writer is
// opened on the first frame, once the image size is known.
type MovieRecorder struct {
	Path     string
	FPS      int
	Quality  int
	Renderer *FrameRenderer

	aw  mjpeg.AviWriter
	buf bytes.Buffer
}

// NewMovieRecorder creates a recorder writing to path.
func NewMovieRecorder(path string, fps int, renderer *FrameRenderer) *MovieRecorder {
	return &MovieRecorder{Path: path, FPS: max(fps, 1), Quality: 90, Renderer: renderer}
}

// RecordFrame renders f and appends it to the movie.
func (r *MovieRecorder) RecordFrame(f experiment.Frame) error {
	img := r.Renderer.Render(f)
	if r.aw == nil {
		if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
			return fmt.Errorf("report: create movie dir: %w", err)
		}
		b := img.Bounds()
		aw, err := mjpeg.New(r.Path, int32(b.Dx()), int32(b.Dy()), int32(r.FPS))
		if err != nil {
			return fmt.Errorf("report: create movie: %w", err)
		}
		r.aw = aw
	}

	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, img, &jpeg.Options{Quality: r.Quality}); err != nil {
		return fmt.Errorf("report: encode movie frame: %w", err)
	}
	if err := r.aw.AddFrame(r.buf.Bytes()); err != nil {
		return fmt.Errorf("report: add movie frame: %w", err)
	}
	return nil
}

// Close finalises the AVI file. A movie with no frames is never created.
func (r *MovieRecorder) Close() error {
	if r.aw == nil {
		return nil
	}
	err := r.aw.Close()
	r.aw = nil
	return err
}
