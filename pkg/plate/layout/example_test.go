package layout_test

import (
	"fmt"

	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/layout"
)

func ExampleGenerate() {
	seq, err := layout.Generate(layout.Sample, plate.Plate96, 3)
	if err != nil {
		panic(err)
	}

	fmt.Println("Wells:", len(seq))
	fmt.Println("First group:", seq[0:3].Wells())
	fmt.Println("Second band starts at:", seq[36])
	// Output:
	// Wells: 72
	// First group: [A1 B1 C1]
	// Second band starts at: E1
}

func ExampleStartRows() {
	// 3 does not divide 8, so bands are 4 rows tall.
	fmt.Println(layout.StartRows(8, 3))
	fmt.Println(layout.StartRows(8, 2))
	// Output:
	// [0 4]
	// [0 2 4 6]
}
