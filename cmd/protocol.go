package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/lumen/settings"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Field writers as seen by the host.
var fieldOwners = map[settings.Field]string{
	settings.TextureChanged: "engine sets, host clears",
	settings.ResetRequested: "host",
	settings.Busy:           "engine",
}

// Describe the settings block layout shared with the engine.
func DescribeProtocol(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	offset := uint32(ctx.Int("offset"))
	if offset%settings.ElementSize != 0 {
		return fmt.Errorf("%w: %d", settings.ErrMisalignedOffset, offset)
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("\nSettings protocol v%d: %d elements of %d bytes (%d bytes total)\n\n",
		settings.ProtocolVersion, settings.NumFields, settings.ElementSize, settings.BlockSize))

	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Element", "Byte offset", "Field", "Type", "Writer"})
	for f := settings.Field(0); f < settings.NumFields; f++ {
		kind := "u32"
		if f.Kind() == settings.FloatKind {
			kind = "f32"
		} else if f.IsFlag() {
			kind = "u32 (0/1)"
		}

		owner, ok := fieldOwners[f]
		if !ok {
			owner = "host"
		}

		table.Append([]string{
			fmt.Sprintf("%d", f),
			fmt.Sprintf("%d", offset+uint32(f)*settings.ElementSize),
			f.String(),
			kind,
			owner,
		})
	}
	table.Render()

	logger.Notice(buf.String())
	return nil
}
