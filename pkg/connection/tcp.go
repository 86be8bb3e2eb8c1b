package connection

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"simpleredis/internal/resp"
)

const DefaultReadBufferSize = 4096

var ErrConnClosed = errors.New("connection closed")

type Option func(*TCPConnection)

// WithReadBufferSize 每次从 socket 读取的最大字节数
func WithReadBufferSize(n int) Option {
	return func(c *TCPConnection) {
		if n > 0 {
			c.chunk = make([]byte, n)
		}
	}
}

// WithIdleTimeout 等待客户端数据的最长时间，0 表示不限制
func WithIdleTimeout(d time.Duration) Option {
	return func(c *TCPConnection) {
		c.idleTimeout = d
	}
}

// TCPConnection 持有连接独占的读缓冲；ReadFrame 只能由一个 goroutine 调用
type TCPConnection struct {
	conn net.Conn
	id   string

	buf         bytes.Buffer
	chunk       []byte
	idleTimeout time.Duration
	readErr     error

	mu     sync.Mutex // 保护写和关闭
	closed bool
}

func NewTCPConnection(conn net.Conn, opts ...Option) *TCPConnection {
	c := &TCPConnection{
		conn: conn,
		id:   uuid.Must(uuid.NewV4()).String(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.chunk == nil {
		c.chunk = make([]byte, DefaultReadBufferSize)
	}
	return c
}

func (c *TCPConnection) ID() string {
	return c.id
}

// ReadFrame 连接结束时缓冲区里残留的半个帧被丢弃，返回 io.ErrUnexpectedEOF
func (c *TCPConnection) ReadFrame() (resp.Frame, error) {
	for {
		frame, err := resp.Decode(&c.buf)
		if err == nil {
			return frame, nil
		}
		if !resp.IsNotComplete(err) {
			return nil, err
		}

		if c.readErr != nil {
			if errors.Is(c.readErr, io.EOF) && c.buf.Len() > 0 {
				c.buf.Reset()
				return nil, io.ErrUnexpectedEOF
			}
			return nil, c.readErr
		}

		if c.idleTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
		}
		n, err := c.conn.Read(c.chunk)
		if n > 0 {
			c.buf.Write(c.chunk[:n])
		}
		if err != nil {
			c.readErr = err
		}
	}
}

// Buffered 返回已读取但尚未解码的字节数
func (c *TCPConnection) Buffered() int {
	return c.buf.Len()
}

func (c *TCPConnection) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrConnClosed
	}
	return c.conn.Write(b)
}

func (c *TCPConnection) WriteFrame(frame resp.Frame) error {
	_, err := c.Write(resp.Encode(frame))
	return err
}

func (c *TCPConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *TCPConnection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *TCPConnection) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
