// Command rpicon decodes a retro game/handheld icon or texture file and
// writes it out as PNG, or prints the format's metadata fields.
//
// Usage:
//
//	rpicon info <input>              Display detected format and fields
//	rpicon decode [options] <input>  Decode to PNG (use "-" for stdin/stdout)
package main

import (
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/format/dreamcast"
	"github.com/deepteams/retroimg/format/gamecube"
	"github.com/deepteams/retroimg/format/ico"
	"github.com/deepteams/retroimg/format/n3ds"
	"github.com/deepteams/retroimg/format/palmos"
	"github.com/deepteams/retroimg/format/psv"
	"github.com/deepteams/retroimg/format/segapvr"
)

// registry lists every per-format reader this tool knows about, tried in
// order against Identify until one claims the source.
var registry = []struct {
	name   string
	reader retroimg.FormatReader
}{
	{"Dreamcast VMS/DCI", dreamcast.Reader{}},
	{"GameCube GCI/GCS/SAV", gamecube.Reader{}},
	{"PlayStation 1 PSV", psv.Reader{}},
	{"Nintendo 3DS SMDH/3DSX/CIA", n3ds.Reader{}},
	{"Palm OS tAIB", palmos.Reader{}},
	{"Windows ICO/CUR", ico.Reader{}},
	{"Sega PVR/GVR/SVR", segapvr.Reader{}},
}

// identify tries every registered reader's Identify in turn and returns the
// first match.
func identify(src retroimg.Source) (string, retroimg.FormatReader, error) {
	for _, e := range registry {
		ok, err := e.reader.Identify(src)
		if err != nil {
			continue
		}
		if ok {
			return e.name, e.reader, nil
		}
	}
	return "", nil, retroimg.NewError("rpicon", retroimg.KindBadMagic, retroimg.ErrBadMagic)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "rpicon: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "rpicon: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  rpicon info <input>              Display detected format and fields
  rpicon decode [options] <input>  Decode to PNG

Use "-" as input to read from stdin, "-o -" to write to stdout.
`)
}

func readSource(path string) (retroimg.Source, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return retroimg.NewSliceSource(data, "<stdin>"), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return retroimg.NewSliceSource(data, path), nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("info: missing input file\nUsage: rpicon info <input>")
	}

	src, err := readSource(fs.Arg(0))
	if err != nil {
		return err
	}

	name, reader, err := identify(src)
	if err != nil {
		return fmt.Errorf("info: unrecognized format: %w", err)
	}
	fields, err := reader.Fields(src)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	fmt.Printf("File:   %s\n", fs.Arg(0))
	fmt.Printf("Format: %s\n", name)
	for _, f := range fields {
		fmt.Printf("%-10s %s\n", f.Name+":", f.Value)
	}
	return nil
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	output := fs.String("o", "", `output PNG path (default: <input>.png, "-" for stdout)`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("decode: missing input file\nUsage: rpicon decode [options] <input>")
	}
	inputPath := fs.Arg(0)

	src, err := readSource(inputPath)
	if err != nil {
		return err
	}

	_, reader, err := identify(src)
	if err != nil {
		return fmt.Errorf("decode: unrecognized format: %w", err)
	}
	img, err := reader.DecodeImage(src)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	outputPath := *output
	if outputPath == "-" {
		return png.Encode(os.Stdout, img)
	}
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.png"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".png"
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("decode: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fmt.Fprintf(os.Stderr, "Decoded %s → %s\n", inputPath, outputPath)
	return nil
}
