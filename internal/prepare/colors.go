package prepare

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type colorStop struct {
	pos   float64
	color colorful.Color
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// portland is the "Portland" diverging colorscale
var portland = []colorStop{
	{0, rgb(12, 51, 131)},
	{0.25, rgb(10, 136, 186)},
	{0.5, rgb(242, 211, 56)},
	{0.75, rgb(242, 143, 56)},
	{1, rgb(217, 30, 30)},
}

// TopicColors assigns every topic a color from the Portland colorscale,
// sampled at evenly spaced points i/n. All components share this
// assignment so a topic has the same color everywhere.
func TopicColors(nTopics int) []string {
	colors := make([]string, nTopics)
	for i := range colors {
		c := sampleColorscale(portland, float64(i)/float64(nTopics))
		r, g, b := c.RGB255()
		colors[i] = fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	return colors
}

// sampleColorscale interpolates linearly in RGB between the two stops
// surrounding t.
func sampleColorscale(scale []colorStop, t float64) colorful.Color {
	if t <= scale[0].pos {
		return scale[0].color
	}
	for k := 1; k < len(scale); k++ {
		lo, hi := scale[k-1], scale[k]
		if t <= hi.pos {
			return lo.color.BlendRgb(hi.color, (t-lo.pos)/(hi.pos-lo.pos))
		}
	}
	return scale[len(scale)-1].color
}
