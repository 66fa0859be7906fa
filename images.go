package poetbook

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/verse"
)

const (
	cardWidth  = 1200
	cardHeight = 630
	cardMargin = 80

	titleScale = 6
	bodyScale  = 3
	maxTitle   = 2
	maxBody    = 5
)

var (
	cardPaper  = color.RGBA{0xfa, 0xf6, 0xee, 0xff}
	cardInk    = color.RGBA{0x22, 0x1e, 0x1a, 0xff}
	cardMuted  = color.RGBA{0x7a, 0x70, 0x66, 0xff}
	cardAccent = color.RGBA{0x8c, 0x2f, 0x39, 0xff}
)

// basicfont only covers ASCII; fold the punctuation poems commonly use.
var asciiFold = strings.NewReplacer(
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
	"–", "-", "—", "--", "…", "...",
)

// renderCard draws a 1200x630 share image for p as PNG.
func renderCard(p collection.Poem, siteName string) ([]byte, error) {
	face := basicfont.Face7x13
	glyphW, glyphH := face.Advance, face.Height

	dst := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(cardPaper), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, 0, 16, cardHeight), image.NewUniform(cardAccent), image.Point{}, draw.Src)

	inner := cardWidth - 2*cardMargin
	y := cardMargin

	for _, line := range wrapText(p.Title, inner/(glyphW*titleScale), maxTitle) {
		drawScaledText(dst, cardMargin, y, titleScale, line, cardInk)
		y += glyphH * titleScale
	}
	if p.Subtitle != "" {
		y += glyphH
		drawScaledText(dst, cardMargin, y, bodyScale, truncate(p.Subtitle, inner/(glyphW*bodyScale)), cardMuted)
		y += glyphH * bodyScale
	}
	y += glyphH * 2

	bodyCols := inner / (glyphW * bodyScale)
	for i, line := range verse.Lines(p.Excerpt) {
		if i == maxBody {
			break
		}
		drawScaledText(dst, cardMargin, y, bodyScale, truncate(line, bodyCols), cardInk)
		y += (glyphH + 4) * bodyScale
	}

	footer := siteName
	if footer != "" {
		drawScaledText(dst, cardMargin, cardHeight-cardMargin-glyphH*bodyScale, bodyScale, truncate(footer, bodyCols), cardAccent)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawScaledText renders s at the font's native size and scales it onto dst
// with its top-left corner at (x, y).
func drawScaledText(dst *image.RGBA, x, y, scale int, s string, col color.Color) {
	s = asciiFold.Replace(s)
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	if w == 0 {
		return
	}
	src := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)
	r := image.Rect(x, y, x+w*scale, y+face.Height*scale)
	draw.NearestNeighbor.Scale(dst, r, src, src.Bounds(), draw.Over, nil)
}

// wrapText breaks s into at most maxLines lines of at most width runes,
// ending the last line with "..." when text is cut.
func wrapText(s string, width, maxLines int) []string {
	var lines []string
	var cur string
	words := strings.Fields(asciiFold.Replace(s))
	for _, word := range words {
		switch {
		case cur == "":
			cur = word
		case len([]rune(cur))+1+len([]rune(word)) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
		if len(lines) == maxLines {
			lines[maxLines-1] = truncate(lines[maxLines-1]+" ...", width)
			return lines
		}
	}
	if cur != "" {
		lines = append(lines, truncate(cur, width))
	}
	return lines
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return strings.TrimRight(string(r[:width-3]), " ") + "..."
}
