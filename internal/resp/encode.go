package resp

import (
	"math"
	"sort"
	"strconv"
)

// Encode 序列化一个帧，nil 按 Null 处理
func Encode(frame Frame) []byte {
	return AppendFrame(nil, frame)
}

// AppendFrame 把帧的线上格式追加到 dst 后面
func AppendFrame(dst []byte, frame Frame) []byte {
	if frame == nil {
		return Null{}.appendTo(dst)
	}
	return frame.appendTo(dst)
}

func appendLine(dst []byte, prefix byte, text string) []byte {
	dst = append(dst, prefix)
	dst = append(dst, text...)
	return append(dst, CRLF...)
}

func appendHeader(dst []byte, prefix byte, n int) []byte {
	dst = append(dst, prefix)
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, CRLF...)
}

func (s SimpleString) appendTo(dst []byte) []byte {
	return appendLine(dst, PrefixSimpleString, string(s))
}

func (s SimpleString) ToBytes() []byte { return s.appendTo(nil) }

func (e SimpleError) appendTo(dst []byte) []byte {
	return appendLine(dst, PrefixSimpleError, string(e))
}

func (e SimpleError) ToBytes() []byte { return e.appendTo(nil) }

// 非负数显式带 '+'
func (i Integer) appendTo(dst []byte) []byte {
	dst = append(dst, PrefixInteger)
	if i >= 0 {
		dst = append(dst, '+')
	}
	dst = strconv.AppendInt(dst, int64(i), 10)
	return append(dst, CRLF...)
}

func (i Integer) ToBytes() []byte { return i.appendTo(nil) }

func (b BulkString) appendTo(dst []byte) []byte {
	dst = appendHeader(dst, PrefixBulkString, len(b))
	dst = append(dst, b...)
	return append(dst, CRLF...)
}

func (b BulkString) ToBytes() []byte { return b.appendTo(nil) }

func (NullBulkString) appendTo(dst []byte) []byte {
	return append(dst, literalNullBulkString...)
}

func (n NullBulkString) ToBytes() []byte { return n.appendTo(nil) }

func (a Array) appendTo(dst []byte) []byte {
	dst = appendHeader(dst, PrefixArray, len(a))
	for _, f := range a {
		dst = AppendFrame(dst, f)
	}
	return dst
}

func (a Array) ToBytes() []byte { return a.appendTo(nil) }

func (Null) appendTo(dst []byte) []byte {
	return append(dst, literalNull...)
}

func (n Null) ToBytes() []byte { return n.appendTo(nil) }

func (NullArray) appendTo(dst []byte) []byte {
	return append(dst, literalNullArray...)
}

func (n NullArray) ToBytes() []byte { return n.appendTo(nil) }

func (b Boolean) appendTo(dst []byte) []byte {
	if b {
		return append(dst, literalTrue...)
	}
	return append(dst, literalFalse...)
}

func (b Boolean) ToBytes() []byte { return b.appendTo(nil) }

func (d Double) appendTo(dst []byte) []byte {
	dst = append(dst, PrefixDouble)
	dst = appendFloat(dst, float64(d))
	return append(dst, CRLF...)
}

func (d Double) ToBytes() []byte { return d.appendTo(nil) }

// appendFloat 输出 [+|-]<int>[.<frac>]，绝对值过大或过小时改用指数形式
func appendFloat(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "nan"...)
	case math.IsInf(f, 1):
		return append(dst, "inf"...)
	case math.IsInf(f, -1):
		return append(dst, "-inf"...)
	}
	if !math.Signbit(f) {
		dst = append(dst, '+')
	}
	abs := math.Abs(f)
	if abs != 0 && (abs > 1e8 || abs < 1e-8) {
		return strconv.AppendFloat(dst, f, 'e', -1, 64)
	}
	return strconv.AppendFloat(dst, f, 'f', -1, 64)
}

// map 的 key 按字典序输出，保证编码结果确定
func (m Map) appendTo(dst []byte) []byte {
	dst = appendHeader(dst, PrefixMap, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dst = SimpleString(k).appendTo(dst)
		dst = AppendFrame(dst, m[k])
	}
	return dst
}

func (m Map) ToBytes() []byte { return m.appendTo(nil) }

func (s Set) appendTo(dst []byte) []byte {
	dst = appendHeader(dst, PrefixSet, len(s))
	for _, f := range s {
		dst = AppendFrame(dst, f)
	}
	return dst
}

func (s Set) ToBytes() []byte { return s.appendTo(nil) }
