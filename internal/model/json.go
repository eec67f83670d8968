package model

// ObjectJSON is the wire projection of a DetectedObject used by the MCP and
// HTTP front ends.
type ObjectJSON struct {
	ID         int         `json:"id"`
	BBox       BoundingBox `json:"bbox"`
	Center     PointJSON   `json:"center"`
	Area       int         `json:"area"`
	Color      *ColorJSON  `json:"color,omitempty"`
	Shape      *Shape      `json:"shape,omitempty"`
	Confidence float64     `json:"confidence"`
}

// PointJSON is an integer point for JSON output.
type PointJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ColorJSON is the color part of ObjectJSON.
type ColorJSON struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	RGB        [3]uint8 `json:"rgb"`
}

// ResultJSON is the wire projection of a DetectionResult.
type ResultJSON struct {
	Objects   []ObjectJSON `json:"objects"`
	Count     int          `json:"count"`
	Timestamp float64      `json:"timestamp"` // Unix seconds
	Width     int          `json:"width,omitempty"`
	Height    int          `json:"height,omitempty"`
}

// ProjectObject converts o to its wire form. index is used as the id when the
// object has none.
func ProjectObject(o DetectedObject, index int) ObjectJSON {
	id := index
	if o.ID != nil {
		id = *o.ID
	}
	c := o.Center()
	out := ObjectJSON{
		ID:         id,
		BBox:       o.Box,
		Center:     PointJSON{X: int(c.X), Y: int(c.Y)},
		Area:       o.Area(),
		Shape:      o.Shape,
		Confidence: o.Confidence,
	}
	if o.Color != nil {
		out.Color = &ColorJSON{
			Name:       o.Color.Name,
			Confidence: o.Color.Confidence,
			RGB:        o.Color.RGB(),
		}
	}
	return out
}

// Project converts a whole result to its wire form.
func Project(r DetectionResult) ResultJSON {
	objects := make([]ObjectJSON, 0, len(r.Objects))
	for i, o := range r.Objects {
		objects = append(objects, ProjectObject(o, i))
	}
	out := ResultJSON{
		Objects: objects,
		Count:   len(objects),
	}
	if !r.Timestamp.IsZero() {
		out.Timestamp = float64(r.Timestamp.UnixNano()) / 1e9
	}
	if r.Frame != nil {
		b := r.Frame.Bounds()
		out.Width = b.Dx()
		out.Height = b.Dy()
	}
	return out
}
