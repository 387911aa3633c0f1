package viz

import (
	"fmt"
	"sort"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gwdetect/internal/sweep"
)

// PowerCurve renders detection power against one swept parameter as a
// terminal plot. Failed rows are skipped.
func PowerCurve(table sweep.Table, param string) (string, error) {
	type point struct {
		x, y float64
	}

	var points []point
	for _, r := range table {
		if r.Failed() {
			continue
		}
		x, err := r.Field(param)
		if err != nil {
			return "", err
		}
		points = append(points, point{x: x, y: r.Power})
	}
	if len(points) == 0 {
		return "", fmt.Errorf("viz: no successful runs to plot")
	}

	sort.Slice(points, func(i, j int) bool { return points[i].x < points[j].x })

	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = p.y
	}

	caption := fmt.Sprintf("power (%%) vs %s [%g .. %g]", param, points[0].x, points[len(points)-1].x)
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	return graph, nil
}
