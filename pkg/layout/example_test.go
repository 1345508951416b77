package layout_test

import (
	"fmt"

	"github.com/matzehuels/panels/pkg/layout"
)

func ExampleSnapToGrid() {
	grid := layout.GridSettings{Enabled: true, Size: 20}
	fmt.Println(layout.SnapToGrid(layout.Point{X: 105, Y: 203}, grid))
	// Output: {100 200}
}

func ExampleDetectCollisions() {
	a := layout.Panel{ID: "a", Size: layout.Size{Width: 100, Height: 100}}
	b := layout.Panel{ID: "b", Position: layout.Point{X: 100}, Size: layout.Size{Width: 100, Height: 100}}
	fmt.Println(len(layout.DetectCollisions(a, []layout.Panel{b})))

	b.Position.X = 90
	fmt.Println(layout.DetectCollisions(a, []layout.Panel{b}))
	// Output:
	// 0
	// [b]
}

func ExampleCalculatePreciseAspectRatio() {
	r := layout.CalculatePreciseAspectRatio(layout.Size{Width: 1280, Height: 720}, 2)
	fmt.Println(r.Formatted, r.Ratio)
	// Output: 16:9 1.78
}
