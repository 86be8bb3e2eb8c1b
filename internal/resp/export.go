package resp

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var OkReply = SimpleString("OK")

var PongReply = SimpleString("PONG")

func MakeOkReply() Frame {
	return OkReply
}

// MakeSimpleStringReply 和 MakeErrReply 的内容可能来自客户端参数，
// 写入单行帧前要把 CR/LF 等不可打印字符替换成空格
func MakeSimpleStringReply(status string) Frame {
	return SimpleString(SafeLine(status))
}

func MakeErrReply(status string) Frame {
	return SimpleError(SafeLine(status))
}

// SafeLine 把不可打印字符和非法 UTF-8 字节替换为空格，保证结果能作为单行帧的内容
func SafeLine(s string) string {
	clean := true
	for _, r := range s {
		if !printable(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return strings.Map(func(r rune) rune {
		if printable(r) {
			return r
		}
		return ' '
	}, s)
}

func printable(r rune) bool {
	return r != utf8.RuneError && unicode.IsPrint(r)
}

func MakeArgNumErrReply(cmdName string) Frame {
	return MakeErrReply(fmt.Sprintf("ERR wrong number of arguments for '%s' command", cmdName))
}

func MakeWrongTypeErrReply() Frame {
	return MakeErrReply("WRONGTYPE Operation against a key holding the wrong kind of value")
}

func MakeIntReply(code int64) Frame {
	return Integer(code)
}

// MakeBulkReply nil 表示 Null Bulk String
func MakeBulkReply(arg []byte) Frame {
	if arg == nil {
		return NullBulkString{}
	}
	return BulkString(arg)
}

func MakeNullBulkReply() Frame {
	return NullBulkString{}
}

func MakeNullReply() Frame {
	return Null{}
}

// MakeMultiBulkReply 把多个参数打包成 Array，nil 元素编码为 Null
func MakeMultiBulkReply(args [][]byte) Frame {
	arr := make(Array, len(args))
	for i, arg := range args {
		if arg == nil {
			arr[i] = Null{}
			continue
		}
		arr[i] = BulkString(arg)
	}
	return arr
}

// 辅助：检查是否是 Error 类型
func IsErrorReply(reply Frame) bool {
	_, ok := reply.(SimpleError)
	return ok
}
