//go:build arm64

package linear

import "golang.org/x/sys/cpu"

// hasNEON records ARM64 NEON support. All ARM64 CPUs in Go's supported set
// have NEON, so this is always true in practice; kept as a named probe for
// symmetry with simd_amd64.go and so the gate below has a single place to
// read from rather than assuming the architecture implies the feature.
var hasNEON = cpu.ARM64.HasASIMD

func init() {
	if hasNEON {
		From16Func = from16Unrolled
		From32Func = from32Unrolled
	}
}
