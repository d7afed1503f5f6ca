// plotterd runs the plotter controller against a serial link and the real
// GPIO hardware, or against stdin/stdout with simulated hardware for bench
// work.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"penplot/core"
	"penplot/rpi"
	"penplot/serial"
	"penplot/sim"
)

type mainOptions struct {
	Port       string
	Baud       int
	ConfigPath string
	Stdio      bool
	Simulate   bool
	Debug      bool

	Pins rpi.Config
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

	if options.Debug {
		core.SetDebugWriter(func(s string) {
			fmt.Fprintln(os.Stderr, s)
		})
	}

	var drv core.Driver
	if options.Simulate {
		drv = sim.New()
	} else {
		d, err := rpi.Open(options.Pins)
		if err != nil {
			return err
		}
		drv = d
	}

	var in io.Reader
	var out io.Writer
	if options.Stdio || options.Simulate {
		in, out = os.Stdin, os.Stdout
	} else {
		port, err := serial.Open(&serial.Config{
			Device: options.Port,
			Baud:   options.Baud,
		})
		if err != nil {
			return err
		}
		defer port.Close()
		in, out = port, port
	}

	ctrl := core.NewController(cfg, drv, out)
	return ctrl.Run(context.Background(), in)
}

func main() {
	options := mainOptions{Pins: rpi.DefaultConfig()}

	flag.StringVar(&options.Port, "port", "/dev/ttyUSB0", "Serial port to listen on")
	flag.IntVar(&options.Baud, "baud", 115200, "Serial baud rate")
	flag.StringVar(&options.ConfigPath, "config", "", "Motion config JSON file")
	flag.BoolVar(&options.Stdio, "stdio", false, "Read commands from stdin instead of a serial port")
	flag.BoolVar(&options.Simulate, "sim", false, "Use simulated hardware (implies --stdio)")
	flag.BoolVar(&options.Debug, "debug", false, "Write diagnostics to stderr")

	flag.StringVar(&options.Pins.X.Step, "x-step", options.Pins.X.Step, "X step pin")
	flag.StringVar(&options.Pins.X.Dir, "x-dir", options.Pins.X.Dir, "X direction pin")
	flag.StringVar(&options.Pins.X.Enable, "x-enable", options.Pins.X.Enable, "X enable pin")
	flag.StringVar(&options.Pins.X.MinLimit, "x-min", options.Pins.X.MinLimit, "X minimum limit switch pin")
	flag.StringVar(&options.Pins.X.MaxLimit, "x-max", options.Pins.X.MaxLimit, "X maximum limit switch pin")
	flag.StringVar(&options.Pins.Y.Step, "y-step", options.Pins.Y.Step, "Y step pin")
	flag.StringVar(&options.Pins.Y.Dir, "y-dir", options.Pins.Y.Dir, "Y direction pin")
	flag.StringVar(&options.Pins.Y.Enable, "y-enable", options.Pins.Y.Enable, "Y enable pin")
	flag.StringVar(&options.Pins.Y.MinLimit, "y-min", options.Pins.Y.MinLimit, "Y minimum limit switch pin")
	flag.StringVar(&options.Pins.Y.MaxLimit, "y-max", options.Pins.Y.MaxLimit, "Y maximum limit switch pin")
	flag.SetInterspersed(true)
	flag.Parse()

	if err := execute(&options); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
