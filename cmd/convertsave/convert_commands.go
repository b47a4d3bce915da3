package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"convertsave/internal/config"
	"convertsave/internal/ipc"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var toFormat string
	var outDir string
	var extraOptions string

	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert a file to another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(toFormat)
			if target == "" {
				return errors.New("target format is required (use --to)")
			}
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			dir := strings.TrimSpace(outDir)
			if dir != "" {
				if dir, err = config.ExpandPath(dir); err != nil {
					return err
				}
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ConvertFile(ipc.ConvertRequest{
					InputPath:    input,
					OutputFormat: target,
					OutputDir:    dir,
					Extra:        extraOptions,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Converted to %s\n", resp.OutputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&toFormat, "to", "", "Target format (extension without dot, e.g. mp3)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the converted file (defaults next to the input)")
	cmd.Flags().StringVar(&extraOptions, "options", "", "Extra tool arguments appended to the plan")
	return cmd
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats <extension>",
		Short: "List conversion targets offered for a file extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AvailableFormats(args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Suggestions) == 0 {
					fmt.Fprintf(stdout, "No conversions available for .%s\n", strings.TrimPrefix(strings.ToLower(args[0]), "."))
					return nil
				}
				rows := make([][]string, 0, len(resp.Suggestions))
				for _, s := range resp.Suggestions {
					rows = append(rows, []string{s.DisplayName, s.Format, s.Tool})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Format", "Extension", "Tool"},
					rows,
				))
				return nil
			})
		},
	}
}

func newPDFCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "pdf <image>...",
		Short: "Combine images into a single PDF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]string, 0, len(args))
			for _, arg := range args {
				expanded, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				inputs = append(inputs, expanded)
			}
			dir := strings.TrimSpace(outDir)
			if dir != "" {
				var err error
				if dir, err = config.ExpandPath(dir); err != nil {
					return err
				}
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ConvertImagesToPDF(ipc.ImagesToPDFRequest{
					InputPaths: inputs,
					OutputDir:  dir,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Combined %d images into %s\n", len(inputs), resp.OutputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the PDF (defaults next to the first image)")
	return cmd
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <path>",
		Short: "Show name, size, and extension for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.FileInfo(path)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Name:      %s\n", resp.Info.Name)
				fmt.Fprintf(stdout, "Size:      %s\n", humanize.Bytes(uint64(resp.Info.Size)))
				fmt.Fprintf(stdout, "Extension: %s\n", resp.Info.Extension)
				return nil
			})
		},
	}
}

func newOpenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Reveal a file or directory in the platform file manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				return client.OpenFolder(path)
			})
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecentConversions(limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Entries) == 0 {
					fmt.Fprintln(stdout, "No conversions recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					rows = append(rows, []string{
						entry.CreatedAt.Local().Format("2006-01-02 15:04"),
						entry.InputPath,
						entry.OutputPath,
						string(entry.Tool),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"When", "Input", "Output", "Tool"},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	return cmd
}
