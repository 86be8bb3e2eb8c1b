package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"simpleredis/internal/logger"
	"simpleredis/internal/resp"
	"simpleredis/pkg/connection"
)

const shutdownTimeout = 5 * time.Second

var errRateLimited = resp.MakeErrReply("ERR max connection rate exceeded")

type Config struct {
	Addr           string
	MetricsAddr    string // 为空时不开启 /metrics
	ReadBufferSize int
	ConnRate       float64 // 每个 IP 每秒新建连接数，0 表示不限制
	ConnBurst      int
	IdleTimeout    time.Duration
}

// Handler 执行一条请求帧并返回回复帧，需要并发安全
type Handler interface {
	Exec(req resp.Frame) resp.Frame
}

type Server struct {
	cfg     Config
	handler Handler
	limiter *ipRateLimiter

	mu        sync.Mutex
	ln        net.Listener
	metricsLn net.Listener
	conns     map[*connection.TCPConnection]struct{}
	wg        sync.WaitGroup
}

func New(cfg Config, handler Handler) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		conns:   make(map[*connection.TCPConnection]struct{}),
	}
	if cfg.ConnRate > 0 {
		s.limiter = newIPRateLimiter(rate.Limit(cfg.ConnRate), cfg.ConnBurst)
	}
	return s
}

// Addr 返回实际监听地址，未开始监听时为 nil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// MetricsAddr 返回 /metrics 的监听地址，未开启时为 nil
func (s *Server) MetricsAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metricsLn == nil {
		return nil
	}
	return s.metricsLn.Addr()
}

// ListenAndServe 阻塞直到 ctx 取消；退出前关闭所有连接并等待处理协程结束
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}

	var metricsSrv *http.Server
	if s.cfg.MetricsAddr != "" {
		if metricsSrv, err = s.startMetrics(); err != nil {
			ln.Close()
			return err
		}
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	logger.Info("server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	err = s.acceptLoop(ctx, ln)

	s.closeConns()
	s.wg.Wait()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	logger.Info("server stopped")
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				logger.Warn("accept timeout", zap.Error(err))
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		if s.limiter != nil && !s.limiter.allow(remoteIP(raw.RemoteAddr())) {
			recordRejected()
			logger.Warn("connection rate exceeded", zap.String("remote", raw.RemoteAddr().String()))
			_ = raw.SetWriteDeadline(time.Now().Add(time.Second))
			_, _ = raw.Write(resp.Encode(errRateLimited))
			raw.Close()
			continue
		}

		client := connection.NewTCPConnection(raw,
			connection.WithReadBufferSize(s.cfg.ReadBufferSize),
			connection.WithIdleTimeout(s.cfg.IdleTimeout),
		)
		s.mu.Lock()
		s.conns[client] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(client)
		}()
	}
}

func (s *Server) handleConn(client *connection.TCPConnection) {
	log := logger.With(zap.String("conn", client.ID()), zap.String("remote", client.RemoteAddr()))
	recordAccept()
	log.Debug("accept connection")

	defer func() {
		client.Close()
		s.mu.Lock()
		delete(s.conns, client)
		s.mu.Unlock()
		recordClose()
		log.Debug("connection closed")
	}()

	for {
		req, err := client.ReadFrame()
		if err != nil {
			s.handleReadError(log, client, err)
			return
		}

		reply := s.handler.Exec(req)
		if err := client.WriteFrame(reply); err != nil {
			if !client.IsClosed() {
				log.Debug("write reply failed", zap.Error(err))
			}
			return
		}
	}
}

func (s *Server) handleReadError(log *zap.Logger, client *connection.TCPConnection, err error) {
	switch kind := resp.ErrorKind(err); {
	case kind != "other":
		recordProtocolError(err)
		log.Warn("protocol error", zap.String("kind", kind), zap.Error(err))
		_ = client.WriteFrame(resp.MakeErrReply("ERR Protocol error: " + err.Error()))
	case errors.Is(err, io.EOF):
	case client.IsClosed() || errors.Is(err, net.ErrClosed):
	default:
		log.Debug("read failed", zap.Error(err))
	}
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.conns {
		client.Close()
	}
}

func (s *Server) startMetrics() (*http.Server, error) {
	ln, err := net.Listen("tcp", s.cfg.MetricsAddr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics %s: %w", s.cfg.MetricsAddr, err)
	}
	RegisterMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	s.mu.Lock()
	s.metricsLn = ln
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("addr", ln.Addr().String()))
	return srv, nil
}

func remoteIP(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
