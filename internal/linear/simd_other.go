//go:build !amd64 && !arm64

package linear

// No CPU feature probe on this architecture; From*Func stay on the
// portable implementation set by Init().
