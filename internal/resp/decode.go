package resp

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Decode 从 buf 头部解析一个完整的帧。
// 成功时恰好消费该帧的字节；返回错误（包括 ErrNotComplete）时 buf 保持不变，
// 调用方可以在追加更多数据后安全重试。
func Decode(buf *bytes.Buffer) (Frame, error) {
	frame, n, err := DecodeBytes(buf.Bytes())
	if err != nil {
		return nil, err
	}
	buf.Next(n)
	return frame, nil
}

// DecodeBytes 解析 buf 开头的一个帧并返回它占用的字节数，不修改 buf
func DecodeBytes(buf []byte) (Frame, int, error) {
	if len(buf) == 0 {
		return nil, 0, ErrNotComplete
	}
	c, ok := codecs[buf[0]]
	if !ok {
		return nil, 0, unknownPrefix(buf[0])
	}
	return c.decode(buf)
}

func linePayload(buf []byte, prefix byte) ([]byte, int, error) {
	end, err := lineEnd(buf, prefix)
	if err != nil {
		return nil, 0, err
	}
	return buf[1:end], end + crlfLen, nil
}

func decodeText(buf []byte, prefix byte) (string, int, error) {
	payload, n, err := linePayload(buf, prefix)
	if err != nil {
		return "", 0, err
	}
	if !utf8.Valid(payload) {
		return "", 0, fmt.Errorf("%w: invalid utf-8 in %q frame", ErrParse, prefix)
	}
	return string(payload), n, nil
}

func decodeSimpleString(buf []byte) (Frame, int, error) {
	s, n, err := decodeText(buf, PrefixSimpleString)
	if err != nil {
		return nil, 0, err
	}
	return SimpleString(s), n, nil
}

func decodeSimpleError(buf []byte) (Frame, int, error) {
	s, n, err := decodeText(buf, PrefixSimpleError)
	if err != nil {
		return nil, 0, err
	}
	return SimpleError(s), n, nil
}

func decodeInteger(buf []byte) (Frame, int, error) {
	payload, n, err := linePayload(buf, PrefixInteger)
	if err != nil {
		return nil, 0, err
	}
	v, err := strconv.ParseInt(string(payload), 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return Integer(v), n, nil
}

// ,[+|-]<int>[.<frac>][(E|e)[sign]<exp>]\r\n，同时接受 inf/-inf/nan
func decodeDouble(buf []byte) (Frame, int, error) {
	payload, n, err := linePayload(buf, PrefixDouble)
	if err != nil {
		return nil, 0, err
	}
	if !validDouble(payload) {
		return nil, 0, fmt.Errorf("%w: invalid double %q", ErrParse, payload)
	}
	v, err := strconv.ParseFloat(string(payload), 64)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return Double(v), n, nil
}

// validDouble 只接受线上格式，ParseFloat 额外支持的写法（如 0x1p-2）一律拒绝
func validDouble(p []byte) bool {
	switch string(p) {
	case "inf", "+inf", "-inf", "nan":
		return true
	}

	i := 0
	if i < len(p) && (p[i] == '+' || p[i] == '-') {
		i++
	}
	digits := func() int {
		start := i
		for i < len(p) && p[i] >= '0' && p[i] <= '9' {
			i++
		}
		return i - start
	}

	if digits() == 0 {
		return false
	}
	if i < len(p) && p[i] == '.' {
		i++
		if digits() == 0 {
			return false
		}
	}
	if i < len(p) && (p[i] == 'e' || p[i] == 'E') {
		i++
		if i < len(p) && (p[i] == '+' || p[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(p)
}

func decodeNull(buf []byte) (Frame, int, error) {
	if err := matchFixed(buf, literalNull); err != nil {
		return nil, 0, err
	}
	return Null{}, len(literalNull), nil
}

func decodeBoolean(buf []byte) (Frame, int, error) {
	v, err := matchBoolean(buf)
	if err != nil {
		return nil, 0, err
	}
	return Boolean(v), len(literalTrue), nil
}

// decodeBulkOrNull 先尝试 $-1\r\n，除 ErrNotComplete 外的失败都回退到普通 bulk string
func decodeBulkOrNull(buf []byte) (Frame, int, error) {
	err := matchFixed(buf, literalNullBulkString)
	if err == nil {
		return NullBulkString{}, len(literalNullBulkString), nil
	}
	if IsNotComplete(err) {
		return nil, 0, err
	}
	return decodeBulkString(buf)
}

func decodeBulkString(buf []byte) (Frame, int, error) {
	end, n, err := parseLength(buf, PrefixBulkString)
	if err != nil {
		return nil, 0, err
	}
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: bulk string length %d", ErrInvalidFrameLength, n)
	}
	start := end + crlfLen
	if len(buf)-start-crlfLen < n {
		return nil, 0, ErrNotComplete
	}
	if buf[start+n] != '\r' || buf[start+n+1] != '\n' {
		return nil, 0, fmt.Errorf("%w: bulk string payload longer than declared %d", ErrInvalidFrameLength, n)
	}
	data := make([]byte, n)
	copy(data, buf[start:start+n])
	return BulkString(data), start + n + crlfLen, nil
}

func decodeArrayOrNull(buf []byte) (Frame, int, error) {
	err := matchFixed(buf, literalNullArray)
	if err == nil {
		return NullArray{}, len(literalNullArray), nil
	}
	if IsNotComplete(err) {
		return nil, 0, err
	}
	frames, n, err := decodeSequence(buf, PrefixArray)
	if err != nil {
		return nil, 0, err
	}
	return Array(frames), n, nil
}

func decodeSet(buf []byte) (Frame, int, error) {
	frames, n, err := decodeSequence(buf, PrefixSet)
	if err != nil {
		return nil, 0, err
	}
	return Set(frames), n, nil
}

// decodeSequence 解析 array/set：先用测长确认所有嵌套元素都已到齐，再逐个解析
func decodeSequence(buf []byte, prefix byte) ([]Frame, int, error) {
	end, count, err := parseLength(buf, prefix)
	if err != nil {
		return nil, 0, err
	}
	if count < 0 {
		return nil, 0, fmt.Errorf("%w: %q count %d", ErrInvalidFrameLength, prefix, count)
	}
	// 每个元素至少 3 字节，count 超过 buf 长度时一定不完整
	if count > len(buf) {
		return nil, 0, ErrNotComplete
	}
	total, err := calcTotalLength(buf, end, count)
	if err != nil {
		return nil, 0, err
	}
	if len(buf) < total {
		return nil, 0, ErrNotComplete
	}

	offset := end + crlfLen
	frames := make([]Frame, 0, count)
	for i := 0; i < count; i++ {
		frame, n, err := DecodeBytes(buf[offset:])
		if err != nil {
			return nil, 0, nestedErr(err, prefix, i)
		}
		frames = append(frames, frame)
		offset += n
	}
	return frames, offset, nil
}

func decodeMap(buf []byte) (Frame, int, error) {
	end, count, err := parseLength(buf, PrefixMap)
	if err != nil {
		return nil, 0, err
	}
	if count < 0 {
		return nil, 0, fmt.Errorf("%w: map count %d", ErrInvalidFrameLength, count)
	}
	if count > len(buf) {
		return nil, 0, ErrNotComplete
	}
	total, err := calcTotalLength(buf, end, count*2)
	if err != nil {
		return nil, 0, err
	}
	if len(buf) < total {
		return nil, 0, ErrNotComplete
	}

	offset := end + crlfLen
	m := make(Map, count)
	for i := 0; i < count; i++ {
		if buf[offset] != PrefixSimpleString {
			return nil, 0, fmt.Errorf("%w: map key %d must be a simple string, got %q", ErrInvalidFrame, i, buf[offset])
		}
		key, n, err := decodeSimpleString(buf[offset:])
		if err != nil {
			return nil, 0, nestedErr(err, PrefixMap, i)
		}
		offset += n

		value, n, err := DecodeBytes(buf[offset:])
		if err != nil {
			return nil, 0, nestedErr(err, PrefixMap, i)
		}
		offset += n

		// 重复 key 以后出现的为准
		m[string(key.(SimpleString))] = value
	}
	return m, offset, nil
}

// nestedErr 给嵌套元素的错误加上位置信息，ErrNotComplete 原样返回
func nestedErr(err error, prefix byte, idx int) error {
	if IsNotComplete(err) {
		return err
	}
	return fmt.Errorf("%q element %d: %w", prefix, idx, err)
}
