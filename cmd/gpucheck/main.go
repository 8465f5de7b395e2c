// Command gpucheck reports whether a WebGPU adapter is available and, if
// so, runs a handful of known ray/triangle segments through the
// admissibility compute batch and prints the results, as a manual sanity
// check for the GPU path (there is no automated test for it, the same way
// the engine's own broad-phase compute path is only exercised manually).
package main

import (
	"fmt"
	"os"

	"carve3d/internal/compute"
)

func main() {
	info, err := compute.Initialize()
	if err != nil {
		fmt.Printf("GPU compute unavailable, core will run on CPU: %v\n", err)
		os.Exit(0)
	}
	fmt.Printf("GPU: %s | %s | %s\n\n", info.Backend, info.Vendor, info.Name)

	batch, err := compute.NewAdmissibilityBatch(64, 64)
	if err != nil {
		fmt.Printf("failed to build admissibility batch: %v\n", err)
		os.Exit(1)
	}
	if batch == nil {
		fmt.Println("compute system unavailable; nothing more to check.")
		return
	}
	defer batch.Release()

	tris := []compute.Tri{
		{AX: -1, AY: -1, AZ: 0, BX: 1, BY: -1, BZ: 0, CX: 0, CY: 1, CZ: 0},
	}
	segments := []compute.Segment{
		{OX: 0, OY: 0, OZ: -5, DX: 0, DY: 0, DZ: 10}, // passes through the triangle
		{OX: 5, OY: 5, OZ: -5, DX: 0, DY: 0, DZ: 1}, // misses entirely
	}

	blocked, err := batch.Test(segments, tris)
	if err != nil {
		fmt.Printf("admissibility test failed: %v\n", err)
		os.Exit(1)
	}

	for i, b := range blocked {
		fmt.Printf("segment %d: blocked=%v\n", i, b)
	}
	if len(blocked) == 2 && blocked[0] && !blocked[1] {
		fmt.Println("admissibility batch behaves as expected.")
	} else {
		fmt.Println("unexpected admissibility results, inspect the shader or buffer layout.")
	}
}
