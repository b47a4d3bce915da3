package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"convertsave/internal/ipc"
)

func newLicenseCommand(ctx *commandContext) *cobra.Command {
	licenseCmd := &cobra.Command{
		Use:   "license",
		Short: "Manage the product license",
	}

	licenseCmd.AddCommand(newLicenseStatusCommand(ctx))
	licenseCmd.AddCommand(newLicenseActivateCommand(ctx))
	licenseCmd.AddCommand(newLicenseDeactivateCommand(ctx))
	licenseCmd.AddCommand(newLicenseChangeKeyCommand(ctx))
	licenseCmd.AddCommand(newLicenseDeviceIDCommand(ctx))
	licenseCmd.AddCommand(newLicenseProductKeyCommand(ctx))

	return licenseCmd
}

func newLicenseStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current license state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LicenseStatus()
				if err != nil {
					return err
				}
				return printLicenseStatus(cmd, ctx, resp)
			})
		},
	}
}

func newLicenseActivateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <product-key>",
		Short: "Validate a product key and bind it to this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ActivateLicense(args[0])
				if err != nil {
					return err
				}
				if !ctx.jsonOutput() {
					fmt.Fprintln(cmd.OutOrStdout(), "License activated")
				}
				return printLicenseStatus(cmd, ctx, resp)
			})
		},
	}
}

func newLicenseDeactivateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Release the license for this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DeactivateLicense()
				if err != nil {
					return err
				}
				if !ctx.jsonOutput() {
					fmt.Fprintln(cmd.OutOrStdout(), "License deactivated")
				}
				return printLicenseStatus(cmd, ctx, resp)
			})
		},
	}
}

func newLicenseChangeKeyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "change-key <product-key>",
		Short: "Replace the stored license with one on a new product key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ChangeProductKey(args[0])
				if err != nil {
					return err
				}
				if !ctx.jsonOutput() {
					fmt.Fprintln(cmd.OutOrStdout(), "Product key changed")
				}
				return printLicenseStatus(cmd, ctx, resp)
			})
		},
	}
}

func newLicenseDeviceIDCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "device-id",
		Short: "Show the device identity the license binds to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DeviceID()
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.DeviceID)
				return nil
			})
		},
	}
}

func newLicenseProductKeyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "product-key",
		Short: "Show the stored product key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CurrentProductKey()
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				if resp.ProductKey == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No license stored")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.ProductKey)
				return nil
			})
		},
	}
}

func printLicenseStatus(cmd *cobra.Command, ctx *commandContext, resp *ipc.LicenseStatusResponse) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, resp)
	}
	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "Activated: %s\n", yesNo(resp.Status.IsActivated))
	fmt.Fprintf(stdout, "Valid:     %s\n", yesNo(resp.Status.IsValid))
	if resp.Status.Plan != "" {
		fmt.Fprintf(stdout, "Plan:      %s\n", resp.Status.Plan)
	}
	if resp.Status.DaysRemaining != nil {
		fmt.Fprintf(stdout, "Days left: %d\n", *resp.Status.DaysRemaining)
	}
	if resp.Status.InGracePeriod {
		fmt.Fprintln(stdout, "Grace period: subscription lapsed recently")
	}
	if resp.Status.Error != "" {
		fmt.Fprintf(stdout, "Error:     %s\n", resp.Status.Error)
	}
	return nil
}
