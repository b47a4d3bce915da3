package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"convertsave/internal/config"
	"convertsave/internal/ipc"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage conversion tool installations",
	}

	toolsCmd.AddCommand(newToolsStatusCommand(ctx))
	toolsCmd.AddCommand(newToolsDownloadCommand(ctx))
	toolsCmd.AddCommand(newToolsTestCommand(ctx))
	toolsCmd.AddCommand(newToolsUpdatesCommand(ctx))
	toolsCmd.AddCommand(newToolsSetPathCommand(ctx))
	toolsCmd.AddCommand(newToolsClearPathCommand(ctx))

	return toolsCmd
}

func newToolsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show availability for every conversion tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ToolsStatus()
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				rows := make([][]string, 0, len(resp.Tools))
				for _, name := range sortedToolNames(resp.Tools) {
					status := resp.Tools[name]
					available := "missing"
					if status.Available {
						available = "installed"
					}
					rows = append(rows, []string{name, available, status.Source, status.Path})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Tool", "Status", "Source", "Path"},
					rows,
				))
				return nil
			})
		},
	}
}

func newToolsDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <tool>",
		Short: "Download and install a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()

				// Establish the event cursor before the install starts so
				// only this install's progress is printed.
				initial, err := client.DownloadEvents(math.MaxInt64)
				if err != nil {
					return err
				}
				cursor := initial.Cursor

				type downloadResult struct {
					resp *ipc.DownloadToolResponse
					err  error
				}
				done := make(chan downloadResult, 1)
				go func() {
					resp, err := client.DownloadTool(args[0])
					done <- downloadResult{resp: resp, err: err}
				}()

				ticker := time.NewTicker(300 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case result := <-done:
						cursor = drainEvents(client, stdout, cursor)
						if result.err != nil {
							return result.err
						}
						if ctx.jsonOutput() {
							return writeJSON(cmd, result.resp)
						}
						fmt.Fprintln(stdout, result.resp.Message)
						return nil
					case <-ticker.C:
						cursor = drainEvents(client, stdout, cursor)
					}
				}
			})
		},
	}
}

func drainEvents(client *ipc.Client, stdout io.Writer, cursor int64) int64 {
	resp, err := client.DownloadEvents(cursor)
	if err != nil {
		return cursor
	}
	for _, ev := range resp.Events {
		fmt.Fprintf(stdout, "  [%s] %s\n", ev.Status, ev.Message)
	}
	return resp.Cursor
}

func newToolsTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test <tool>",
		Short: "Run a tool's version command to verify the installation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestTool(args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Tool:    %s\n", resp.Result.Tool)
				fmt.Fprintf(stdout, "Path:    %s\n", resp.Result.Path)
				fmt.Fprintf(stdout, "Version: %s\n", resp.Result.Version)
				return nil
			})
		},
	}
}

func newToolsUpdatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "updates",
		Short: "Check installed tools against upstream releases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CheckUpdates()
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				names := make([]string, 0, len(resp.Tools))
				for name := range resp.Tools {
					names = append(names, name)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					info := resp.Tools[name]
					if !info.Installed {
						rows = append(rows, []string{name, "not installed", "", ""})
						continue
					}
					update := "up to date"
					if info.UpdateAvailable {
						update = "update available"
					}
					rows = append(rows, []string{name, update, info.CurrentVersion, info.LatestVersion})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Tool", "Status", "Installed", "Latest"},
					rows,
				))
				return nil
			})
		},
	}
}

func newToolsSetPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-path <tool> <path>",
		Short: "Override the binary used for a tool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.SetToolPath(args[0], path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Using %s for %s\n", path, args[0])
				return nil
			})
		},
	}
}

func newToolsClearPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-path <tool>",
		Short: "Remove a tool's binary override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.ClearToolPath(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared override for %s\n", args[0])
				return nil
			})
		},
	}
}
