package resp

import "errors"

var (
	// ErrNotComplete 表示缓冲区数据还不足以组成一个完整的帧，调用方应继续读取后重试
	ErrNotComplete = errors.New("frame not complete")

	ErrInvalidFrame       = errors.New("invalid frame")
	ErrInvalidFrameType   = errors.New("invalid frame type")
	ErrInvalidFrameLength = errors.New("invalid frame length")
	ErrParse              = errors.New("parse error")
)

func IsNotComplete(err error) bool {
	return errors.Is(err, ErrNotComplete)
}

// ErrorKind 返回错误所属类别，用于日志和指标标签
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotComplete):
		return "not_complete"
	case errors.Is(err, ErrInvalidFrameType):
		return "invalid_frame_type"
	case errors.Is(err, ErrInvalidFrameLength):
		return "invalid_frame_length"
	case errors.Is(err, ErrInvalidFrame):
		return "invalid_frame"
	case errors.Is(err, ErrParse):
		return "parse"
	default:
		return "other"
	}
}
