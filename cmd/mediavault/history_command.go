package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			if len(resp.Batches) == 0 {
				fmt.Fprintln(out, "No batches recorded yet")
				return nil
			}

			for _, batch := range resp.Batches {
				fmt.Fprintf(out, "Batch %d  %s  (%d ok, %d failed)\n",
					batch.ID,
					batch.CreatedAt.Local().Format(time.RFC1123),
					batch.SuccessCount,
					batch.FailCount,
				)
				rows := make([][]string, 0, len(batch.Items))
				for _, item := range batch.Items {
					outcome := "ok"
					detail := item.S3URL
					if !item.Success {
						outcome = "failed"
						detail = item.Error
					}
					size := ""
					if item.SizeBytes > 0 {
						size = humanize.IBytes(uint64(item.SizeBytes))
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", item.Position+1),
						outcome,
						item.Title,
						size,
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Result", "Title", "Size", "Location / Error"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of batches to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw response as JSON")
	return cmd
}
