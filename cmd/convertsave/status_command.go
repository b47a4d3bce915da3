package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"convertsave/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, tool, and license status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				statusResp, err := client.Status()
				if err != nil {
					return err
				}
				toolsResp, err := client.ToolsStatus()
				if err != nil {
					return err
				}
				licenseResp, err := client.LicenseStatus()
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"daemon":  statusResp,
						"tools":   toolsResp.Tools,
						"license": licenseResp.Status,
					})
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Running", statusOK, fmt.Sprintf("pid %d", statusResp.PID), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, statusResp.SocketPath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Data dir", statusInfo, statusResp.DataDir, colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Tools", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, name := range sortedToolNames(toolsResp.Tools) {
					status := toolsResp.Tools[name]
					if status.Available {
						fmt.Fprintln(stdout, renderStatusLine(name, statusOK, status.Path, colorize))
					} else {
						fmt.Fprintln(stdout, renderStatusLine(name, statusWarn, "not installed", colorize))
					}
				}
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("License", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Activated", licenseKind(licenseResp.Status.IsActivated), yesNo(licenseResp.Status.IsActivated), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Valid", licenseKind(licenseResp.Status.IsValid), yesNo(licenseResp.Status.IsValid), colorize))
				if licenseResp.Status.Plan != "" {
					fmt.Fprintln(stdout, renderStatusLine("Plan", statusInfo, licenseResp.Status.Plan, colorize))
				}
				if licenseResp.Status.DaysRemaining != nil {
					fmt.Fprintln(stdout, renderStatusLine("Days left", statusInfo, fmt.Sprintf("%d", *licenseResp.Status.DaysRemaining), colorize))
				}
				if licenseResp.Status.InGracePeriod {
					fmt.Fprintln(stdout, renderStatusLine("Grace period", statusWarn, "subscription lapsed recently", colorize))
				}
				return nil
			})
		},
	}
}

func licenseKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusWarn
}

func sortedToolNames(tools map[string]ipc.ToolStatus) []string {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
