//go:build amd64

package linear

import "golang.org/x/sys/cpu"

// hasSSE2 records whether the runtime CPU advertises SSE2, replacing a
// hand-written CPUID probe with x/sys/cpu's own detection.
var hasSSE2 = cpu.X86.HasSSE2

func init() {
	if hasSSE2 {
		From16Func = from16Unrolled
		From32Func = from32Unrolled
	}
}
