package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"log/slog"

	"tryon/internal/extraction"
	"tryon/internal/job"
	"tryon/internal/logging"
	"tryon/internal/logs"
	"tryon/internal/notifications"
	"tryon/internal/orchestrator"
	"tryon/internal/store"
)

const defaultWaitTimeout = 25 * time.Second

// Server exposes the orchestrator via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server
	svc       *service

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, orc *orchestrator.Orchestrator, fetcher *extraction.Fetcher, notifier notifications.Service, logger *slog.Logger) (*Server, error) {
	if orc == nil {
		return nil, errors.New("ipc server requires an orchestrator")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{
		orchestrator: orc,
		fetcher:      fetcher,
		notifier:     notifier,
		logger:       logger,
		ctx:          ctx,
	}
	if err := rpcServer.RegisterName("Tryon", svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		svc:       svc,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// SetLogPath points the Logs RPC at the daemon log file.
func (s *Server) SetLogPath(path string) {
	s.svc.logPath = path
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	orchestrator *orchestrator.Orchestrator
	fetcher      *extraction.Fetcher
	notifier     notifications.Service
	logger       *slog.Logger
	logPath      string
	ctx          context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func (s *service) Start(req StartRequest, resp *StartResponse) error {
	s.log().Debug("job start requested", logging.String(logging.FieldURL, req.GarmentURL))
	record, err := s.orchestrator.Start(s.ctx, job.Request{
		GarmentURL:  req.GarmentURL,
		GarmentData: req.GarmentData,
		ModelPhoto:  req.ModelPhoto,
		Description: req.Description,
		SourcePage:  req.SourcePage,
	})
	if err != nil {
		return err
	}
	resp.Job = FromRecord(record)
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	record, err := s.orchestrator.Query(s.ctx)
	if err != nil {
		return err
	}
	resp.Job = FromRecord(record)
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Clear(_ ClearRequest, resp *ClearResponse) error {
	record, err := s.orchestrator.Clear(s.ctx)
	if err != nil {
		return err
	}
	resp.Job = FromRecord(record)
	return nil
}

func (s *service) Result(_ ResultRequest, resp *ResultResponse) error {
	record, err := s.orchestrator.Query(s.ctx)
	if err != nil {
		return err
	}
	resp.Status = string(record.Status)
	resp.Result = record.Result
	resp.Error = record.Error
	return nil
}

// Wait blocks until the slot moves away from the caller's last observation
// or the timeout elapses. Delivery stays best-effort: a caller that misses
// a transition sees it on the next Status call.
func (s *service) Wait(req WaitRequest, resp *WaitResponse) error {
	timeout := time.Duration(req.TimeoutMillis) * time.Millisecond
	if timeout <= 0 || timeout > defaultWaitTimeout {
		timeout = defaultWaitTimeout
	}

	updates, unsubscribe := s.orchestrator.Subscribe()
	defer unsubscribe()

	current, err := s.orchestrator.Query(s.ctx)
	if err != nil {
		return err
	}
	changed := func(record job.Record) bool {
		return record.Token != req.Token || string(record.Status) != req.Status
	}
	if changed(current) {
		resp.Job = FromRecord(current)
		resp.Changed = true
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case record, ok := <-updates:
			if !ok {
				resp.Job = FromRecord(current)
				return nil
			}
			if changed(record) {
				resp.Job = FromRecord(record)
				resp.Changed = true
				return nil
			}
		case <-timer.C:
			latest, err := s.orchestrator.Query(s.ctx)
			if err != nil {
				return err
			}
			resp.Job = FromRecord(latest)
			resp.Changed = changed(latest)
			return nil
		case <-s.ctx.Done():
			resp.Job = FromRecord(current)
			return nil
		}
	}
}

func (s *service) PhotoSet(req PhotoSetRequest, resp *PhotoSetResponse) error {
	data := strings.TrimSpace(req.Data)
	if data == "" {
		return errors.New("photo data is required")
	}
	err := s.orchestrator.SavePhoto(s.ctx, store.Photo{
		Label:   strings.TrimSpace(req.Label),
		Data:    data,
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	resp.Saved = true
	s.log().Info("reference photo saved", logging.String("label", req.Label))
	return nil
}

func (s *service) PhotoGet(_ PhotoGetRequest, resp *PhotoGetResponse) error {
	photo, found, err := s.orchestrator.LoadPhoto(s.ctx)
	if err != nil {
		return err
	}
	resp.Found = found
	if found {
		resp.Label = photo.Label
		resp.Data = photo.Data
		resp.SavedAt = photo.SavedAt
	}
	return nil
}

func (s *service) PhotoRemove(_ PhotoRemoveRequest, resp *PhotoRemoveResponse) error {
	if err := s.orchestrator.RemovePhoto(s.ctx); err != nil {
		return err
	}
	resp.Removed = true
	s.log().Info("reference photo removed")
	return nil
}

func (s *service) Extract(req ExtractRequest, resp *ExtractResponse) error {
	if s.fetcher == nil {
		return errors.New("page extraction is not configured")
	}
	pageURL := strings.TrimSpace(req.PageURL)
	if pageURL == "" {
		return errors.New("page url is required")
	}
	result, err := s.fetcher.FetchAndExtract(s.ctx, pageURL)
	if err != nil {
		return err
	}
	resp.Images = result.Images
	resp.Description = result.Description
	return nil
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Logs(req LogsRequest, resp *LogsResponse) error {
	if s.logPath == "" {
		return errors.New("daemon log file is not configured")
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait < 0 || wait > defaultWaitTimeout {
		wait = defaultWaitTimeout
	}
	chunk, err := logs.Tail(s.ctx, s.logPath, logs.Options{
		Offset:   req.Offset,
		MaxLines: req.MaxLines,
		Follow:   req.Follow,
		Wait:     wait,
	})
	if err != nil {
		return err
	}
	resp.Lines = chunk.Lines
	resp.NextOffset = chunk.NextOffset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	if s.notifier == nil {
		resp.Sent = false
		resp.Message = "notifications are not configured"
		return nil
	}
	if err := s.notifier.TestNotification(s.ctx); err != nil {
		resp.Sent = false
		resp.Message = err.Error()
		return nil
	}
	resp.Sent = true
	resp.Message = "test notification sent"
	return nil
}
