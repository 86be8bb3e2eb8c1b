package connection

import "simpleredis/internal/resp"

type Connection interface {
	// 写原始字节到对端
	Write([]byte) (int, error)

	// 编码并写出一个帧
	WriteFrame(resp.Frame) error

	// 读取下一个完整的帧，不完整时继续从网络读取
	ReadFrame() (resp.Frame, error)

	// 关闭连接
	Close() error

	// 连接是否已关闭
	IsClosed() bool

	// 获取对端地址（用于日志、限流）
	RemoteAddr() string

	// 连接的唯一标识
	ID() string
}
