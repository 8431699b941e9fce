package headless_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/viewport/headless"
)

func Example() {
	vp := headless.New(headless.Options{Eager: true})
	c := collage.New(vp, nil, collage.Options{})

	for i, at := range []geom.Point{{X: 0, Y: 0}, {X: 0.5, Y: 0}} {
		r := c.Load(context.Background(), collage.Descriptor{
			ID:     fmt.Sprintf("slide-%d", i),
			Title:  "Organ Slice",
			Owner:  "SomeOwner",
			Tags:   "tag0 tag1 tag2",
			Source: fmt.Sprintf("/slide/%d/image.dzi", i),
			Size:   geom.Size{W: 1, H: 0.75},
		}, at)
		if err := c.Register(r.Item); err != nil {
			fmt.Println("error:", err)
			return
		}
	}
	for i := 0; i < 200; i++ {
		c.Frame()
	}

	a, b := c.Items()[0].Bounds(), c.Items()[1].Bounds()
	inter, _ := geom.Intersection(a, b)
	fmt.Println("items:", len(c.Items()))
	fmt.Printf("overlap: %.3f\n", inter.Area())
	// Output:
	// items: 2
	// overlap: 0.000
}
