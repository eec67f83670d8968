package navigation

import (
	"fmt"
	"image"
)

// Priority ranks how urgent an object in a zone is.
type Priority string

const (
	Critical Priority = "critical"
	High     Priority = "high"
	Medium   Priority = "medium"
	Low      Priority = "low"
)

const (
	gridCols = 5
	gridRows = 3
)

var (
	rowNames = [gridRows]string{"far", "mid", "immediate"}
	colNames = [gridCols]string{"far_left", "left", "center", "right", "far_right"}
)

var zonePriorities = map[string]Priority{
	"immediate_center":    Critical,
	"immediate_left":      High,
	"immediate_right":     High,
	"mid_center":          High,
	"immediate_far_left":  Medium,
	"immediate_far_right": Medium,
	"mid_left":            Medium,
	"mid_right":           Medium,
	"far_center":          Medium,
}

var zoneDescriptions = map[string]string{
	"immediate_center":    "directly ahead",
	"immediate_left":      "immediate left",
	"immediate_right":     "immediate right",
	"immediate_far_left":  "immediate far left",
	"immediate_far_right": "immediate far right",
	"mid_center":          "ahead at medium distance",
	"mid_left":            "medium distance left",
	"mid_right":           "medium distance right",
	"mid_far_left":        "medium distance far left",
	"mid_far_right":       "medium distance far right",
	"far_center":          "far ahead",
	"far_left":            "far left",
	"far_right":           "far right",
	"far_far_left":        "far far left",
	"far_far_right":       "far far right",
}

// Zone is one cell of the navigation grid.
type Zone struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Row         int      `json:"row"`
	Col         int      `json:"col"`

	// Rect spans the zone. Min and Max are both treated as inclusive when
	// placing objects.
	Rect image.Rectangle `json:"-"`
}

// Contains reports whether (x, y) lies in the zone, edges included.
func (z Zone) Contains(x, y int) bool {
	return x >= z.Rect.Min.X && x <= z.Rect.Max.X && y >= z.Rect.Min.Y && y <= z.Rect.Max.Y
}

// Zones builds the 5x3 grid for a frame of the given size, far row first and
// left column first within each row. Cell sizes use integer division, so any
// remainder at the right and bottom edges belongs to no zone.
func Zones(width, height int) []Zone {
	colWidth := width / gridCols
	rowHeight := height / gridRows

	zones := make([]Zone, 0, gridRows*gridCols)
	for row := 0; row < gridRows; row++ {
		for col := 0; col < gridCols; col++ {
			name := fmt.Sprintf("%s_%s", rowNames[row], colNames[col])
			priority, ok := zonePriorities[name]
			if !ok {
				priority = Low
			}
			zones = append(zones, Zone{
				Name:        name,
				Description: zoneDescriptions[name],
				Priority:    priority,
				Row:         row,
				Col:         col,
				Rect:        image.Rect(col*colWidth, row*rowHeight, (col+1)*colWidth, (row+1)*rowHeight),
			})
		}
	}
	return zones
}
