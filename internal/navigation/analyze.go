package navigation

import (
	"fmt"
	"time"

	"github.com/ironsheep/shape-vision/internal/model"
)

// ObjectLabel is the color and shape name of an object in a zone.
type ObjectLabel struct {
	Color string `json:"color"`
	Shape string `json:"shape"`
}

// ZoneSummary describes an occupied zone.
type ZoneSummary struct {
	ObjectCount int           `json:"object_count"`
	Priority    Priority      `json:"priority"`
	Objects     []ObjectLabel `json:"objects"`
}

// Analysis is the navigation reading of one frame.
type Analysis struct {
	Timestamp    time.Time              `json:"timestamp"`
	TotalObjects int                    `json:"total_objects"`
	ZoneSummary  map[string]ZoneSummary `json:"zone_analysis"`
	Advice       []string               `json:"navigation_advice"`
	Warnings     []string               `json:"warnings"`

	// ObjectsByZone lists the objects in every zone, empty zones included.
	ObjectsByZone map[string][]model.DetectedObject `json:"-"`

	zones map[string]Zone
}

// Messages returns warnings followed by advice, the order in which they
// should be announced.
func (a *Analysis) Messages() []string {
	out := make([]string, 0, len(a.Warnings)+len(a.Advice))
	out = append(out, a.Warnings...)
	return append(out, a.Advice...)
}

func (a *Analysis) occupied(zone string) bool {
	return len(a.ObjectsByZone[zone]) > 0
}

var immediateZones = []string{
	"immediate_far_left", "immediate_left", "immediate_center", "immediate_right", "immediate_far_right",
}

// Analyze places every object of result in the grid for a width x height
// frame and derives advice and warnings.
func Analyze(result model.DetectionResult, width, height int) *Analysis {
	a := &Analysis{
		Timestamp:     result.Timestamp,
		TotalObjects:  result.Len(),
		ZoneSummary:   make(map[string]ZoneSummary),
		ObjectsByZone: make(map[string][]model.DetectedObject),
		zones:         make(map[string]Zone),
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}

	for _, z := range Zones(width, height) {
		a.zones[z.Name] = z

		var in []model.DetectedObject
		for _, o := range result.Objects {
			c := o.Box
			if z.Contains(c.X+c.Width/2, c.Y+c.Height/2) {
				in = append(in, o)
			}
		}
		a.ObjectsByZone[z.Name] = in

		if len(in) > 0 {
			labels := make([]ObjectLabel, len(in))
			for i, o := range in {
				labels[i] = ObjectLabel{Color: o.ColorName(), Shape: o.ShapeName()}
			}
			a.ZoneSummary[z.Name] = ZoneSummary{ObjectCount: len(in), Priority: z.Priority, Objects: labels}
		}
	}

	a.Advice = a.advice()
	a.Warnings = a.warnings()
	return a
}

// describe names a zone's objects: "red square directly ahead" for one
// object, "3 objects directly ahead" for several.
func (a *Analysis) describe(zone string) string {
	objs := a.ObjectsByZone[zone]
	desc := a.zones[zone].Description
	if len(objs) == 1 {
		color, shape := "unknown color", "object"
		if objs[0].Color != nil {
			color = objs[0].Color.Name
		}
		if objs[0].Shape != nil {
			shape = objs[0].Shape.Name
		}
		return fmt.Sprintf("%s %s %s", color, shape, desc)
	}
	return fmt.Sprintf("%d objects %s", len(objs), desc)
}

func (a *Analysis) advice() []string {
	var advice []string

	for _, zone := range []string{"immediate_center", "immediate_left", "immediate_right", "immediate_far_left", "immediate_far_right"} {
		if a.occupied(zone) {
			advice = append(advice, a.describe(zone))
		}
	}

	clear := make(map[string]bool)
	blocked := 0
	for _, zone := range immediateZones {
		if a.occupied(zone) {
			blocked++
		} else {
			clear[zone] = true
		}
	}

	switch {
	case len(clear) == 0:
	case clear["immediate_center"]:
		if clear["immediate_left"] && clear["immediate_right"] {
			advice = append(advice, "Path ahead is clear")
		} else {
			advice = append(advice, "Center path is clear")
		}
	case clear["immediate_left"]:
		if clear["immediate_far_left"] {
			advice = append(advice, "Move left - wide left path available")
		} else {
			advice = append(advice, "Move slightly left")
		}
	case clear["immediate_right"]:
		if clear["immediate_far_right"] {
			advice = append(advice, "Move right - wide right path available")
		} else {
			advice = append(advice, "Move slightly right")
		}
	case clear["immediate_far_left"]:
		advice = append(advice, "Move far left to avoid obstacles")
	case clear["immediate_far_right"]:
		advice = append(advice, "Move far right to avoid obstacles")
	}

	midBlocked := a.occupied("mid_left") || a.occupied("mid_center") || a.occupied("mid_right")
	if midBlocked && blocked == 0 {
		advice = append(advice, "Obstacles ahead at medium distance - plan your path")
	}
	return advice
}

func (a *Analysis) warnings() []string {
	var warnings []string

	center := a.occupied("immediate_center")
	left := a.occupied("immediate_left")
	right := a.occupied("immediate_right")

	if center {
		warnings = append(warnings, "CAUTION: Obstacle directly ahead")
	}
	for _, zone := range []string{"immediate_left", "immediate_right"} {
		if a.occupied(zone) {
			warnings = append(warnings, "WARNING: Objects "+a.zones[zone].Description)
		}
	}

	total := 0
	for _, zone := range immediateZones {
		total += len(a.ObjectsByZone[zone])
	}
	switch {
	case total >= 4:
		warnings = append(warnings, "DANGER: Multiple obstacles in immediate area")
	case total >= 2:
		warnings = append(warnings, "Multiple obstacles detected nearby")
	}

	if center {
		switch {
		case left && right:
			warnings = append(warnings, "BLOCKED: No clear path ahead")
		case left:
			warnings = append(warnings, "Narrow passage: Only right side available")
		case right:
			warnings = append(warnings, "Narrow passage: Only left side available")
		}
	}

	if a.occupied("far_center") && !center {
		warnings = append(warnings, "Obstacle approaching ahead - prepare to navigate")
	}

	for _, zone := range []string{"immediate_far_left", "immediate_far_right"} {
		if a.occupied(zone) {
			warnings = append(warnings, "Edge obstacle: "+a.zones[zone].Description)
		}
	}
	return warnings
}
