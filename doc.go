// Package retroimg decodes the icon, banner, and texture image formats
// used by retro game consoles and handhelds into a common in-memory
// representation.
//
// retroimg is a pure Go library with no CGo dependencies, making it fully
// portable and easy to cross-compile. It does not encode, render, or own a
// window; it only turns a console-specific container into pixels a host
// application (a shell extension, a file browser thumbnailer, a web viewer)
// can hand to its own image pipeline.
//
// The library supports:
//   - Dreamcast VMS/DCI save-file icons and animations
//   - GameCube GCI/GCS/SAV save-file banners and icons
//   - PlayStation 1 PSV ("PS1 Icon") save icons and animations
//   - Nintendo 3DS SMDH/3DSX/CIA application icons (CCI is not supported)
//   - Palm OS tAIB bitmap resources
//   - Windows ICO/CUR icon and cursor files
//   - Sega PVR/GVR/SVR textures (Dreamcast, GameCube, PlayStation 2)
//
// Basic usage:
//
//	src := retroimg.NewSliceSource(data, "icon.pvr")
//	r := segapvr.Reader{}
//	ok, err := r.Identify(src)
//	img, err := r.DecodeImage(src)
//
// *Image implements the standard library's image.Image interface, so a
// decoded result can be passed directly to image/png, image/draw, or any
// other stdlib or third-party image consumer.
package retroimg
