package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"convertsave/internal/api"
	"convertsave/internal/daemon"
	"convertsave/internal/logging"
	"convertsave/internal/tools"
)

func toAPIConvertRequest(req ConvertRequest) api.ConvertRequest {
	return api.ConvertRequest{
		InputPath:    req.InputPath,
		OutputFormat: req.OutputFormat,
		OutputDir:    req.OutputDir,
		Extra:        req.Extra,
	}
}

// Server exposes the conversion service via JSON-RPC over a Unix domain
// socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
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
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("ConvertSave", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
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
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	st := s.daemon.Status()
	resp.Running = true
	resp.PID = st.PID
	resp.SocketPath = st.SocketPath
	resp.DataDir = st.DataDir
	resp.HistoryDBPath = st.HistoryDBPath
	return nil
}

func (s *service) AvailableFormats(req FormatsRequest, resp *FormatsResponse) error {
	resp.Suggestions = s.daemon.Service().AvailableFormats(req.Extension)
	return nil
}

func (s *service) ConvertFile(req ConvertRequest, resp *ConvertResponse) error {
	s.logger.Debug("convert requested",
		logging.String("input", req.InputPath),
		logging.String("format", req.OutputFormat))
	out, err := s.daemon.Service().Convert(s.ctx, toAPIConvertRequest(req))
	if err != nil {
		return err
	}
	resp.OutputPath = out
	return nil
}

func (s *service) ConvertImagesToPDF(req ImagesToPDFRequest, resp *ImagesToPDFResponse) error {
	s.logger.Debug("images-to-pdf requested", logging.Int("input_count", len(req.InputPaths)))
	out, err := s.daemon.Service().ConvertImagesToPDF(s.ctx, req.InputPaths, req.OutputDir)
	if err != nil {
		return err
	}
	resp.OutputPath = out
	return nil
}

func (s *service) FileInfo(req FileInfoRequest, resp *FileInfoResponse) error {
	info, err := s.daemon.Service().GetFileInfo(req.Path)
	if err != nil {
		return err
	}
	resp.Info = info
	return nil
}

func (s *service) OpenFolder(req OpenFolderRequest, _ *OpenFolderResponse) error {
	return s.daemon.Service().OpenFolder(s.ctx, req.Path)
}

func (s *service) DownloadTool(req DownloadToolRequest, resp *DownloadToolResponse) error {
	s.logger.Info("tool download requested",
		logging.String(logging.FieldTool, req.Tool),
		logging.String(logging.FieldEventType, "tool_download"))
	msg, err := s.daemon.Service().DownloadTool(s.ctx, req.Tool)
	if err != nil {
		return err
	}
	resp.Message = msg
	return nil
}

func (s *service) DownloadEvents(req DownloadEventsRequest, resp *DownloadEventsResponse) error {
	events, cursor := s.daemon.Events(req.After)
	resp.Events = events
	resp.Cursor = cursor
	return nil
}

func (s *service) TestTool(req TestToolRequest, resp *TestToolResponse) error {
	result, err := s.daemon.Service().TestTool(s.ctx, req.Tool)
	if err != nil {
		return err
	}
	resp.Result = result
	return nil
}

func (s *service) ToolsStatus(_ ToolsStatusRequest, resp *ToolsStatusResponse) error {
	resp.Tools = s.daemon.Service().ToolsStatus(s.ctx)
	return nil
}

func (s *service) CheckUpdates(_ CheckUpdatesRequest, resp *CheckUpdatesResponse) error {
	resp.Tools = s.daemon.Service().CheckUpdates(s.ctx)
	return nil
}

func (s *service) SetToolPath(req SetToolPathRequest, _ *SetToolPathResponse) error {
	id, err := tools.Parse(req.Tool)
	if err != nil {
		return err
	}
	s.logger.Info("tool override set",
		logging.String(logging.FieldTool, req.Tool),
		logging.String("path", req.Path))
	return s.daemon.Service().SetToolPath(id, req.Path)
}

func (s *service) ClearToolPath(req ClearToolPathRequest, _ *ClearToolPathResponse) error {
	id, err := tools.Parse(req.Tool)
	if err != nil {
		return err
	}
	s.logger.Info("tool override cleared", logging.String(logging.FieldTool, req.Tool))
	return s.daemon.Service().ClearToolPath(id)
}

func (s *service) LicenseStatus(_ LicenseStatusRequest, resp *LicenseStatusResponse) error {
	resp.Status = s.daemon.Service().LicenseStatus(s.ctx)
	return nil
}

func (s *service) ActivateLicense(req ActivateLicenseRequest, resp *LicenseStatusResponse) error {
	resp.Status = s.daemon.Service().ActivateLicense(s.ctx, req.ProductKey)
	return nil
}

func (s *service) DeactivateLicense(_ DeactivateLicenseRequest, resp *LicenseStatusResponse) error {
	resp.Status = s.daemon.Service().DeactivateLicense(s.ctx)
	return nil
}

func (s *service) ChangeProductKey(req ChangeProductKeyRequest, resp *LicenseStatusResponse) error {
	resp.Status = s.daemon.Service().ChangeProductKey(s.ctx, req.ProductKey)
	return nil
}

func (s *service) DeviceID(_ DeviceIDRequest, resp *DeviceIDResponse) error {
	id, err := s.daemon.Service().DeviceID()
	if err != nil {
		return err
	}
	resp.DeviceID = id
	return nil
}

func (s *service) CurrentProductKey(_ ProductKeyRequest, resp *ProductKeyResponse) error {
	key, err := s.daemon.Service().CurrentProductKey()
	if err != nil {
		return err
	}
	resp.ProductKey = key
	return nil
}

func (s *service) RecentConversions(req HistoryRequest, resp *HistoryResponse) error {
	entries, err := s.daemon.Service().RecentConversions(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = entries
	return nil
}
