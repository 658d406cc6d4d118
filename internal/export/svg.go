package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const (
	positiveColor = "#ff5555"
	negativeColor = "#5599ff"
	lineColor     = "#3a3a3a"
	markColor     = "#8a8a8a"
	trailColor    = "#00ff88"
)

// Trails maps a body to the positions it has visited.
type Trails map[body.ID][]vecmath.Vec2

// Record appends the current position of every body in snap.
func (t Trails) Record(snap *engine.Snapshot) {
	for _, b := range snap.Bodies {
		t[b.ID] = append(t[b.ID], b.Pos)
	}
	for _, r := range snap.Removed {
		t[r.Pose.ID] = append(t[r.Pose.ID], r.Pose.Pos)
	}
}

type viewport struct {
	bounds vecmath.Rect
	w, h   float64
}

// px maps world meters to SVG user units, y up.
func (v viewport) px(p vecmath.Vec2) (float64, float64) {
	x := (p.X - v.bounds.Min.X) / v.bounds.Width() * v.w
	y := v.h - (p.Y-v.bounds.Min.Y)/v.bounds.Height()*v.h
	return x, y
}

func (v viewport) scale(d float64) float64 {
	return d / v.bounds.Width() * v.w
}

// SnapshotToSVG draws streamlines, direction marks, static charges, bodies and
// optional trails of snap into a width×height SVG covering bounds.
func SnapshotToSVG(snap engine.Snapshot, trails Trails, bounds vecmath.Rect, width, height int) string {
	if bounds.Width() <= 0 || bounds.Height() <= 0 {
		return ""
	}
	v := viewport{bounds: bounds, w: float64(width), h: float64(height)}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-width="1">`+"\n", lineColor))
	for _, s := range snap.Streamlines {
		writePath(&sb, v, s.Points)
	}
	sb.WriteString("</g>\n")

	sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="1.2">`+"\n", markColor))
	for _, s := range snap.Streamlines {
		for _, m := range s.Marks {
			x1, y1 := v.px(m.A)
			x2, y2 := v.px(m.B)
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x1, y1, x2, y2))
		}
	}
	sb.WriteString("</g>\n")

	if len(trails) > 0 {
		sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-width="1.5">`+"\n", trailColor))
		for _, pts := range trails {
			writePath(&sb, v, pts)
		}
		sb.WriteString("</g>\n")
	}

	r := v.scale(field.ParticleRadius)
	for _, c := range snap.Statics {
		writeCharge(&sb, v, c.Pos, c.Q, r)
	}
	for _, b := range snap.Bodies {
		if b.Kind == body.KindDipole && len(b.Charges) == 2 {
			x1, y1 := v.px(b.Charges[0].Pos)
			x2, y2 := v.px(b.Charges[1].Pos)
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#cccccc" stroke-width="2"/>`+"\n", x1, y1, x2, y2))
		}
		for _, c := range b.Charges {
			writeCharge(&sb, v, c.Pos, c.Q, r*0.7)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writePath(sb *strings.Builder, v viewport, points []vecmath.Vec2) {
	if len(points) < 2 {
		return
	}
	sb.WriteString(`<path d="M`)
	for i, p := range points {
		x, y := v.px(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>` + "\n")
}

func writeCharge(sb *strings.Builder, v viewport, pos vecmath.Vec2, q, r float64) {
	color := positiveColor
	if q < 0 {
		color = negativeColor
	}
	x, y := v.px(pos)
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, y, r, color))
}

// WriteSVG is SnapshotToSVG to a writer.
func WriteSVG(w io.Writer, snap engine.Snapshot, trails Trails, bounds vecmath.Rect, width, height int) error {
	_, err := io.WriteString(w, SnapshotToSVG(snap, trails, bounds, width, height))
	return err
}
