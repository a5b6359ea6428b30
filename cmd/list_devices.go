package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/cpu"
	"github.com/urfave/cli"
)

// List the CPUs available for rendering.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	logical, err := cpu.Counts(true)
	if err != nil {
		logger.Warningf("could not detect logical cpu count: %s", err.Error())
		logical = runtime.NumCPU()
	}
	physical, err := cpu.Counts(false)
	if err != nil {
		physical = logical
	}

	infoList, err := cpu.Info()
	if err != nil {
		return fmt.Errorf("could not query cpu information: %s", err.Error())
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"CPU", "Vendor", "Model", "Cores", "MHz"})
	for _, info := range infoList {
		table.Append([]string{
			fmt.Sprintf("%d", info.CPU),
			info.VendorID,
			info.ModelName,
			fmt.Sprintf("%d", info.Cores),
			fmt.Sprintf("%.0f", info.Mhz),
		})
	}
	table.SetFooter([]string{"", "", "", fmt.Sprintf("%d physical", physical), fmt.Sprintf("%d workers", logical)})
	table.Render()

	logger.Noticef("system provides %d cpu(s):\n%s", len(infoList), buf.String())
	return nil
}
