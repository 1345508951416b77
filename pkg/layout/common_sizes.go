package layout

import (
	"math"
	"sort"
)

// CommonSize is a named preset a resize may snap to.
type CommonSize struct {
	Name string `json:"name" toml:"name"`
	Size Size   `json:"size" toml:"size"`
}

// DefaultCommonSizes are the presets offered when no custom list is configured.
var DefaultCommonSizes = []CommonSize{
	{Name: "small", Size: Size{Width: 300, Height: 200}},
	{Name: "medium", Size: Size{Width: 400, Height: 300}},
	{Name: "large", Size: Size{Width: 600, Height: 400}},
	{Name: "square", Size: Size{Width: 400, Height: 400}},
	{Name: "widescreen", Size: Size{Width: 800, Height: 450}},
	{Name: "portrait", Size: Size{Width: 300, Height: 500}},
}

// SizeAlternative is a preset ranked by distance from the requested size.
type SizeAlternative struct {
	CommonSize
	Distance float64 `json:"distance"`
}

// CommonSizeResult is returned by SnapToCommonSizes.
type CommonSizeResult struct {
	Size         Size              `json:"snappedSize"`
	WasSnapped   bool              `json:"wasSnapped"`
	Target       *CommonSize       `json:"snapTarget,omitempty"`
	Distance     float64           `json:"snapDistance"`
	Alternatives []SizeAlternative `json:"alternatives"`
}

// SnapToCommonSizes finds the preset nearest to size by Euclidean distance.
// The size snaps when that distance is within threshold. Alternatives are
// always returned, nearest first, so a UI can offer them even without a snap.
// With no candidates the size is returned unchanged with a zero distance.
func SnapToCommonSizes(size Size, threshold float64, candidates []CommonSize) CommonSizeResult {
	res := CommonSizeResult{Size: size, Alternatives: []SizeAlternative{}}
	if len(candidates) == 0 {
		return res
	}

	res.Alternatives = make([]SizeAlternative, 0, len(candidates))
	for _, c := range candidates {
		d := math.Hypot(c.Size.Width-size.Width, c.Size.Height-size.Height)
		res.Alternatives = append(res.Alternatives, SizeAlternative{CommonSize: c, Distance: d})
	}
	sort.SliceStable(res.Alternatives, func(i, j int) bool {
		return res.Alternatives[i].Distance < res.Alternatives[j].Distance
	})

	nearest := res.Alternatives[0]
	res.Distance = nearest.Distance
	if nearest.Distance <= threshold {
		target := nearest.CommonSize
		res.Size = target.Size
		res.WasSnapped = true
		res.Target = &target
	}
	return res
}
