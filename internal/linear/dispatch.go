package linear

// Dispatch function variables, in the original implementation's
// function-pointer-table idiom: Init() wires the portable implementation,
// and a platform-specific init() (simd_*.go) overrides From16Func/From32Func
// with the unrolled variants (accel.go) when that platform's CPU-feature
// probe reports a wide-register unit. Callers go through these variables,
// not From16/From32 directly, so the probe result actually changes which
// code runs.
var (
	From8Func  = From8
	From16Func = From16
	From24Func = From24
	From32Func = From32
)

func init() {
	Init()
}

// Init (re-)installs the portable implementations. Exported so a host that
// links this package into a larger binary can force portable behaviour
// back on directly.
func Init() {
	From8Func = From8
	From16Func = From16
	From24Func = From24
	From32Func = From32
}
