package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"mediavault/internal/api"
	"mediavault/internal/config"
	"mediavault/internal/ingest"
	"mediavault/internal/journal"
	"mediavault/internal/logging"
)

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}
	token := strings.TrimSpace(cfg.Paths.APIToken)
	if token == "" {
		return nil, errors.New("api server requires an api token")
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		token:  token,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/api/ingest", srv.handleIngest)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/history", srv.handleHistory)

	srv.server = &http.Server{
		Handler:           srv.requireToken(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Batches download and upload full videos synchronously, so the
		// response can take many minutes to start.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	requests := make([]ingest.Request, len(req.Videos))
	for i, video := range req.Videos {
		requests[i] = ingest.Request{
			SourceURL:    video.URL,
			Title:        video.Title,
			Group:        video.Group,
			Category:     video.Section,
			ChannelTitle: video.ChannelTitle,
			UploadDate:   video.UploadDate,
			ViewCount:    video.ViewCount,
			Index:        i,
		}
	}

	summary, err := s.daemon.RunBatch(r.Context(), requests)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyBatch) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]api.ItemResult, len(summary.Results))
	for i, result := range summary.Results {
		results[i] = api.ItemResult{
			Success:   result.Success,
			VideoID:   result.RecordID,
			Title:     result.Title,
			S3URL:     result.StorageURL,
			Size:      result.SizeLabel,
			SizeBytes: result.SizeBytes,
			Error:     result.Error,
		}
	}
	// A 200 means the batch ran to completion; item failures live in the
	// results, not the top-level flag.
	s.writeJSON(w, http.StatusOK, api.IngestResponse{
		Success:      true,
		SuccessCount: summary.SuccessCount,
		FailCount:    summary.FailCount,
		Total:        summary.Total,
		Results:      results,
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	deps := make([]api.DependencyStatus, len(status.Dependencies))
	for i, dep := range status.Dependencies {
		deps[i] = api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		UptimeSeconds: int64(status.Uptime.Seconds()),
		JournalPath:   status.JournalPath,
		LockFilePath:  status.LockFilePath,
		Dependencies:  deps,
	})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	batches, err := s.daemon.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Batches: convertHistory(batches)})
}

func convertHistory(batches []journal.Batch) []api.HistoryBatch {
	if len(batches) == 0 {
		return nil
	}
	out := make([]api.HistoryBatch, 0, len(batches))
	for _, batch := range batches {
		items := make([]api.HistoryItem, 0, len(batch.Items))
		for _, item := range batch.Items {
			items = append(items, api.HistoryItem{
				Position:  item.Position,
				Title:     item.Title,
				SourceURL: item.SourceURL,
				Success:   item.Success,
				S3URL:     item.StorageURL,
				RecordID:  item.RecordID,
				SizeBytes: item.SizeBytes,
				Error:     item.Error,
			})
		}
		out = append(out, api.HistoryBatch{
			ID:           batch.ID,
			CreatedAt:    batch.CreatedAt,
			Total:        batch.Total,
			SuccessCount: batch.SuccessCount,
			FailCount:    batch.FailCount,
			Items:        items,
		})
	}
	return out
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
