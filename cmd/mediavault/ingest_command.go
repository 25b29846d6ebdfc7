package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediavault/internal/api"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var batchFile string
	var jsonOut bool
	var title string
	var group string
	var section string
	var channelTitle string
	var uploadDate string
	var viewCount int64

	cmd := &cobra.Command{
		Use:   "ingest [url]",
		Short: "Submit a batch of videos for acquisition",
		Long: `Submit videos to the daemon for download, upload, and cataloging.

A batch file (--file) holds JSON of the form {"videos": [...]} or a bare
array of video entries. Alternatively a single video can be submitted by
passing its URL with --title and --group.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := buildIngestRequest(args, batchFile, api.VideoInput{
				Title:        title,
				Group:        group,
				Section:      section,
				ChannelTitle: channelTitle,
				UploadDate:   uploadDate,
				ViewCount:    viewCount,
			})
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			resp, err := client.Ingest(cmd.Context(), *request)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, resp)
			}
			renderIngestResponse(cmd, resp)
			if resp.FailCount > 0 {
				return fmt.Errorf("%d of %d videos failed", resp.FailCount, resp.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&batchFile, "file", "f", "", "Path to a JSON batch file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw response as JSON")
	cmd.Flags().StringVar(&title, "title", "", "Video title (single-video mode)")
	cmd.Flags().StringVar(&group, "group", "", "Owning group (single-video mode)")
	cmd.Flags().StringVar(&section, "section", "", "Section or category (single-video mode)")
	cmd.Flags().StringVar(&channelTitle, "channel", "", "Source channel title (single-video mode)")
	cmd.Flags().StringVar(&uploadDate, "upload-date", "", "Original upload date (single-video mode)")
	cmd.Flags().Int64Var(&viewCount, "views", 0, "View count (single-video mode)")
	return cmd
}

func buildIngestRequest(args []string, batchFile string, single api.VideoInput) (*api.IngestRequest, error) {
	batchFile = strings.TrimSpace(batchFile)
	switch {
	case batchFile != "" && len(args) > 0:
		return nil, errors.New("pass either a batch file or a single URL, not both")
	case batchFile != "":
		return readBatchFile(batchFile)
	case len(args) == 1:
		single.URL = strings.TrimSpace(args[0])
		if single.URL == "" {
			return nil, errors.New("url must not be empty")
		}
		if strings.TrimSpace(single.Title) == "" {
			return nil, errors.New("--title is required in single-video mode")
		}
		return &api.IngestRequest{Videos: []api.VideoInput{single}}, nil
	default:
		return nil, errors.New("provide a batch file with --file or a single URL")
	}
}

func readBatchFile(path string) (*api.IngestRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var request api.IngestRequest
	if err := json.Unmarshal(data, &request); err == nil && len(request.Videos) > 0 {
		return &request, nil
	}

	var videos []api.VideoInput
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	return &api.IngestRequest{Videos: videos}, nil
}

func renderIngestResponse(cmd *cobra.Command, resp *api.IngestResponse) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(resp.Results))
	for i, result := range resp.Results {
		outcome := "ok"
		detail := result.S3URL
		if !result.Success {
			outcome = "failed"
			detail = result.Error
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			outcome,
			result.Title,
			result.Size,
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Result", "Title", "Size", "Location / Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "%d succeeded, %d failed (%d total)\n", resp.SuccessCount, resp.FailCount, resp.Total)
}
