// Command imagepipe resamples an image through a sampling pipe and writes
// the result.
//
// Usage:
//
//	imagepipe -in photo.jpg -out thumb.png -width 64 -height 64
//	imagepipe -in https://example.com/a.png -out a.bmp -nearest -width 512
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/profile"

	"github.com/gogpu/imagepipe"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command and returns its exit code. Deferred cleanup,
// including the CPU profile flush, completes before it returns.
func run(args []string) int {
	fs := flag.NewFlagSet("imagepipe", flag.ContinueOnError)
	var (
		input    = fs.String("in", "", "input image path or URL (http, https, file, data)")
		output   = fs.String("out", "out.png", "output file (.png, .jpg, .bmp, .tif)")
		width    = fs.Int("width", 0, "output width (0 = source width)")
		height   = fs.Int("height", 0, "output height (0 = source height)")
		nearest  = fs.Bool("nearest", false, "nearest-neighbor sampling instead of bilinear")
		oob      = fs.String("oob", "#00000000", "color outside the source, as hex")
		workers  = fs.Int("workers", 1, "rasterization goroutines (-1 = GOMAXPROCS)")
		timeout  = fs.Duration("timeout", 0, "load timeout (0 = none)")
		profPath = fs.String("profile", "", "write a CPU profile to this directory")
		verbose  = fs.Bool("v", false, "verbose logging")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *input == "" {
		fs.Usage()
		return 2
	}

	if *profPath != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profPath), profile.NoShutdownHook).Stop()
	}

	if *verbose {
		imagepipe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	start := time.Now()
	p, err := imagepipe.LoadImagePipe(ctx, *input,
		imagepipe.WithNearest(*nearest),
		imagepipe.WithOOB(imagepipe.Hex(*oob)))
	if err != nil {
		log.Printf("Failed to load %s: %v", *input, err)
		return 1
	}

	w, h := *width, *height
	if w == 0 {
		w = p.Width()
	}
	if h == 0 {
		h = p.Height()
	}

	r := imagepipe.NewRenderer(imagepipe.WithWorkers(*workers))
	defer r.Close()

	buf, err := r.RasterizeSize(p, w, h)
	if err != nil {
		log.Printf("Failed to rasterize: %v", err)
		return 1
	}

	if err := imagepipe.EncodeFile(*output, buf); err != nil {
		log.Printf("Failed to save: %v", err)
		return 1
	}

	log.Printf("Saved %s (%dx%d -> %dx%d) in %v\n", *output, p.Width(), p.Height(), w, h, time.Since(start))
	return 0
}
