package common

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"simpleredis/internal/logger"
	"simpleredis/internal/resp"
)

// ToCmdLine 把请求帧转换为命令行，只接受非空的 Array，元素必须是 BulkString 或 SimpleString
func ToCmdLine(frame resp.Frame) ([][]byte, bool) {
	arr, ok := frame.(resp.Array)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	cmd := make([][]byte, len(arr))
	for i, v := range arr {
		switch elem := v.(type) {
		case resp.BulkString:
			cmd[i] = elem
		case resp.SimpleString:
			cmd[i] = []byte(elem)
		default:
			return nil, false
		}
	}
	return cmd, true
}

// SplitArgs 按空白切分一行输入，用于交互式客户端
func SplitArgs(line string) [][]byte {
	fields := strings.Fields(line)
	cmd := make([][]byte, len(fields))
	for i, v := range fields {
		cmd[i] = []byte(v)
	}
	return cmd
}

func LogBytesArr(prefix string, content [][]byte) {
	if ce := logger.Logger.Check(zap.DebugLevel, prefix); ce != nil {
		args := make([]string, len(content))
		for i, v := range content {
			args[i] = string(v)
		}
		ce.Write(zap.Strings("args", args))
	}
}

func ParseInt(b []byte) (int64, bool) {
	v, err := strconv.ParseInt(string(b), 10, 64)
	return v, err == nil
}

func CloneBytes(b []byte) []byte {
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
