// plotsim replays a command script against simulated hardware and renders
// the X motor/Y motor trace to a PNG. Handy for eyeballing what a script
// will do before feeding it to the real machine.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fogleman/gg"
	flag "github.com/spf13/pflag"

	"penplot/core"
	"penplot/sim"
)

type mainOptions struct {
	Script     string
	Out        string
	ConfigPath string
	Size       int

	// Simulated bed: the limit switches sit this many steps out from the
	// starting position in each direction.
	TravelX int
	TravelY int
}

func execute(options *mainOptions) error {
	cfg := core.DefaultConfig()
	if options.ConfigPath != "" {
		var err error
		cfg, err = core.LoadConfigFile(options.ConfigPath)
		if err != nil {
			return err
		}
	}

	drv := sim.New()
	drv.RecordTrace = true
	drv.TripAt(core.AxisX, core.DirMinus, -options.TravelX)
	drv.TripAt(core.AxisX, core.DirPlus, options.TravelX)
	drv.TripAt(core.AxisY, core.DirMinus, -options.TravelY)
	drv.TripAt(core.AxisY, core.DirPlus, options.TravelY)

	var in io.Reader = os.Stdin
	if options.Script != "-" {
		f, err := os.Open(options.Script)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	ctrl := core.NewController(cfg, drv, os.Stdout)
	if err := ctrl.Run(context.Background(), in); err != nil {
		return err
	}

	if len(drv.Trace) == 0 {
		return fmt.Errorf("script issued no pulses, nothing to render")
	}
	return render(drv.Trace, options.Size, options.Out)
}

// render draws the net channel positions as a polyline, scaled to fit.
func render(trace [][core.NumAxes]int, size int, path string) error {
	minX, maxX := trace[0][core.AxisX], trace[0][core.AxisX]
	minY, maxY := trace[0][core.AxisY], trace[0][core.AxisY]
	for _, p := range trace {
		minX = min(minX, p[core.AxisX])
		maxX = max(maxX, p[core.AxisX])
		minY = min(minY, p[core.AxisY])
		maxY = max(maxY, p[core.AxisY])
	}
	spanX := max(maxX-minX, 1)
	spanY := max(maxY-minY, 1)

	const pad = 20
	scale := float64(size-2*pad) / float64(max(spanX, spanY))

	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)

	for i, p := range trace {
		x := pad + float64(p[core.AxisX]-minX)*scale
		// Image origin is top-left; the plotter's is bottom-left.
		y := float64(size) - pad - float64(p[core.AxisY]-minY)*scale
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()
	return dc.SavePNG(path)
}

func main() {
	var options mainOptions

	flag.StringVar(&options.Script, "script", "-", "Command script file, - for stdin")
	flag.StringVar(&options.Out, "out", "plot.png", "Output PNG path")
	flag.StringVar(&options.ConfigPath, "config", "", "Motion config JSON file")
	flag.IntVar(&options.Size, "size", 800, "Output image size in pixels")
	flag.IntVar(&options.TravelX, "travel-x", 5000, "Simulated X travel to each limit switch")
	flag.IntVar(&options.TravelY, "travel-y", 3500, "Simulated Y travel to each limit switch")
	flag.SetInterspersed(true)
	flag.Parse()

	if err := execute(&options); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
