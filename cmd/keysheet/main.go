// Key sheet renderer: lays out randomly generated keys on a grid.
package main

import (
	"bufio"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/model"
	"github.com/kyiku/keydrop-back/internal/render"
)

func main() {
	count := flag.Int("n", 12, "number of keys")
	cols := flag.Int("cols", 4, "keys per row")
	width := flag.Float64("w", 200, "key box width")
	height := flag.Float64("h", 100, "key box height")
	out := flag.String("o", "-", "output file (.svg or .png), - for svg on stdout")
	flag.Parse()

	box := keyshape.BoundingBox{Width: *width, Height: *height}
	if !box.Usable() {
		log.Fatalf("box %.0fx%.0f is smaller than %.0f", box.Width, box.Height, keyshape.MinSize)
	}
	if *count <= 0 || *cols <= 0 {
		log.Fatal("n and cols must be positive")
	}

	scene := sheet(keyshape.NewGenerator(), box, *count, *cols)

	if *out == "-" {
		w := bufio.NewWriter(os.Stdout)
		render.SVG(w, scene)
		if err := w.Flush(); err != nil {
			log.Fatal(err)
		}
		return
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer f.Close()

	if err := write(f, *out, scene); err != nil {
		log.Fatalf("Failed to render %s: %v", *out, err)
	}
	log.Printf("Wrote %d keys to %s", *count, *out)
}

// sheet places count keys on a grid of cols columns, one box per cell.
func sheet(gen *keyshape.Generator, box keyshape.BoundingBox, count, cols int) render.Scene {
	rows := (count + cols - 1) / cols
	cols = min(cols, count)

	keys := make([]model.PlacedShape, 0, count)
	for i := 0; i < count; i++ {
		center := r2.Vec{
			X: (float64(i%cols) + 0.5) * box.Width,
			Y: (float64(i/cols) + 0.5) * box.Height,
		}
		p := gen.Generate(box.Width, box.Height)
		g := keyshape.Build(box, p, 0).At(center)
		keys = append(keys, *model.NewPlacedShape(box, p, g))
	}

	scene := render.NewScene(float64(cols)*box.Width, float64(rows)*box.Height, keys)
	scene.ShowGround = false
	return scene
}

func write(w io.Writer, name string, scene render.Scene) error {
	if strings.HasSuffix(strings.ToLower(name), ".png") {
		return render.PNG(w, scene)
	}
	render.SVG(w, scene)
	return nil
}
