package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			runningKind := statusError
			if status.Running {
				runningKind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("Running", runningKind, yesNo(status.Running), colorize))
			fmt.Fprintln(out, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", status.PID), colorize))
			if status.UptimeSeconds > 0 {
				uptime := time.Duration(status.UptimeSeconds) * time.Second
				fmt.Fprintln(out, renderStatusLine("Uptime", statusInfo, uptime.String(), colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Journal", statusInfo, status.JournalPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, dep := range status.Dependencies {
				kind := statusOK
				message := "available"
				if !dep.Available {
					message = dep.Detail
					kind = statusError
					if dep.Optional {
						kind = statusWarn
					}
				}
				fmt.Fprintln(out, renderStatusLine(dep.Name, kind, message, colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw response as JSON")
	return cmd
}
