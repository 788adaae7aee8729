// Package compositor renders single video frames: a cover-fit background
// with an optional outlined caption, serialized as one JPEG per frame for
// the encoder's image-sequence input.
package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/sub2video/internal/system"
)

const (
	jpegQuality   = 90
	wrapMargin    = 60 // caption max width is frame width minus this
	outlineRadius = 3  // ~6px stroke
	badgeSize     = 96
	badgeMargin   = 20
)

// Renderer produces one encoded frame for a caption. The cache wraps this.
type Renderer interface {
	Render(caption string, anchorPct int) ([]byte, error)
}

// Compositor renders frames against a fixed background at a fixed output
// resolution. The background is scaled once at construction; per-frame work
// is caption drawing and JPEG encoding only.
type Compositor struct {
	width, height int
	face          font.Face
	lineHeight    int
	ascent        int
	background    *image.RGBA
	badge         image.Image
}

// New prepares a compositor. The background is drawn cover-fit: scaled by
// max(W/imgW, H/imgH) and centered, so the frame is always fully covered
// with no letterboxing.
func New(bg image.Image, width, height int, fontSize float64, badgeURL string) (*Compositor, error) {
	ft, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse caption font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build caption face: %w", err)
	}

	metrics := face.Metrics()

	c := &Compositor{
		width:      width,
		height:     height,
		face:       face,
		lineHeight: metrics.Height.Ceil(),
		ascent:     metrics.Ascent.Ceil(),
	}
	c.background = c.renderBackground(bg)

	if badgeURL != "" {
		q, err := qrcode.New(badgeURL, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("build badge qr: %w", err)
		}
		c.badge = q.Image(badgeSize)
	}

	return c, nil
}

// renderBackground produces the static cover-fit layer shared by every frame.
func (c *Compositor) renderBackground(bg image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)

	srcW := float64(bg.Bounds().Dx())
	srcH := float64(bg.Bounds().Dy())
	if srcW == 0 || srcH == 0 {
		return dst
	}

	scale := float64(c.width) / srcW
	if s := float64(c.height) / srcH; s > scale {
		scale = s
	}
	scaledW := int(srcW * scale)
	scaledH := int(srcH * scale)
	offX := (c.width - scaledW) / 2
	offY := (c.height - scaledH) / 2

	target := image.Rect(offX, offY, offX+scaledW, offY+scaledH)
	xdraw.CatmullRom.Scale(dst, target, bg, bg.Bounds(), xdraw.Over, nil)

	if c.badge != nil {
		bb := c.badge.Bounds()
		pos := image.Rect(
			c.width-bb.Dx()-badgeMargin,
			c.height-bb.Dy()-badgeMargin,
			c.width-badgeMargin,
			c.height-badgeMargin,
		)
		draw.Draw(dst, pos, c.badge, bb.Min, draw.Over)
	}

	return dst
}

// Render composes one frame and returns it as a JPEG blob. An empty
// caption is a valid no-op: the frame is just the background.
func (c *Compositor) Render(caption string, anchorPct int) ([]byte, error) {
	frame := system.GetImage(image.Rect(0, 0, c.width, c.height))
	defer system.PutImage(frame)

	copy(frame.Pix, c.background.Pix)

	if caption != "" {
		c.drawCaption(frame, caption, anchorPct)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// drawCaption wraps and draws the caption block, vertically centered on
// anchorY = H * pct / 100.
func (c *Compositor) drawCaption(dst *image.RGBA, caption string, anchorPct int) {
	lines := c.wrap(caption)
	if len(lines) == 0 {
		return
	}

	anchorY := c.height * anchorPct / 100
	total := c.lineHeight * len(lines)
	top := anchorY - total/2

	for i, line := range lines {
		width := font.MeasureString(c.face, line).Ceil()
		x := (c.width - width) / 2
		baseline := top + i*c.lineHeight + c.ascent
		c.drawOutlined(dst, line, x, baseline)
	}
}

// wrap splits the caption at the character level: greedy append, new line
// when the next rune would exceed the max width. Word-level wrapping would
// fail on alphabets without inter-word spaces.
func (c *Compositor) wrap(caption string) []string {
	maxWidth := fixed.I(c.width - wrapMargin)

	var lines []string
	var line []rune
	for _, r := range caption {
		candidate := append(line, r)
		if len(line) > 0 && font.MeasureString(c.face, string(candidate)) > maxWidth {
			lines = append(lines, string(line))
			line = []rune{r}
			continue
		}
		line = candidate
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}

// drawOutlined strokes the line in black by stamping it at every offset
// within the outline radius, then fills in white on top.
func (c *Compositor) drawOutlined(dst *image.RGBA, line string, x, baseline int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: c.face,
	}
	for dy := -outlineRadius; dy <= outlineRadius; dy++ {
		for dx := -outlineRadius; dx <= outlineRadius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if dx*dx+dy*dy > outlineRadius*outlineRadius+1 {
				continue
			}
			d.Dot = fixed.P(x+dx, baseline+dy)
			d.DrawString(line)
		}
	}

	d.Src = image.NewUniform(color.White)
	d.Dot = fixed.P(x, baseline)
	d.DrawString(line)
}
