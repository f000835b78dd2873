package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/lumen/cmd"
	"github.com/achilleasa/lumen/renderer"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "progressive path tracing with interactive camera control"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set log level (debug, info, notice, warning, error)",
		},
	}

	sessionFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 288,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: 64,
			Usage: "samples per pixel",
		},
		cli.IntFlag{
			Name:  "bounces",
			Value: renderer.DefaultNumBounces,
			Usage: "max number of indirect ray bounces",
		},
		cli.IntFlag{
			Name:  "preview-scale",
			Value: renderer.DefaultInteractiveScale,
			Usage: "frame dimension divisor while the camera is being moved",
		},
		cli.IntFlag{
			Name:  "preview-spp",
			Value: renderer.DefaultInteractiveSamples,
			Usage: "samples per pixel while the camera is being moved",
		},
		cli.DurationFlag{
			Name:  "poll-interval",
			Value: renderer.DefaultPollInterval,
			Usage: "interval between engine status checks",
		},
		cli.DurationFlag{
			Name:  "busy-timeout",
			Value: renderer.DefaultBusyTimeout,
			Usage: "max time to wait for the engine to finish a pass",
		},
		cli.StringFlag{
			Name:  "origin",
			Usage: "camera origin as x,y,z",
		},
		cli.StringFlag{
			Name:  "look-at",
			Usage: "camera look-at point as x,y,z",
		},
		cli.Float64Flag{
			Name:  "fov",
			Value: 90,
			Usage: "vertical field of view in degrees",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "number of render goroutines (0 uses all cpus)",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "protocol",
			Usage: "describe the settings block shared with the engine",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "offset",
					Value: 0,
					Usage: "byte offset of the settings block",
				},
			},
			Action: cmd.DescribeProtocol,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Accumulate a single frame of the built-in scene at full resolution and write
it to an image file. The output format is selected by the file extension
(png, bmp, tif or tiff).`,
					Flags: append([]cli.Flag{
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, sessionFlags...),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "interactive",
					Usage: "render interactive view of the scene",
					Description: `
Open a window that displays the accumulating frame. Drag with the left mouse
button to orbit, with the right mouse button to pan and use the scroll wheel or
the up/down keys to dolly. Accumulation restarts at a reduced resolution while
the camera moves.`,
					Flags:  sessionFlags,
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
