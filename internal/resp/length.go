package resp

import (
	"bytes"
	"fmt"
	"strconv"
)

// frameCodec 是前缀表中的一项：measure 只计算长度不消费，decode 在只读切片上解析
type frameCodec struct {
	measure func(buf []byte) (int, error)
	decode  func(buf []byte) (Frame, int, error)
}

// codecs 前缀 -> 编解码函数，在 init 中填充以避免初始化循环
var codecs map[byte]frameCodec

func init() {
	codecs = map[byte]frameCodec{
		PrefixSimpleString: {measure: measureLine(PrefixSimpleString), decode: decodeSimpleString},
		PrefixSimpleError:  {measure: measureLine(PrefixSimpleError), decode: decodeSimpleError},
		PrefixInteger:      {measure: measureLine(PrefixInteger), decode: decodeInteger},
		PrefixDouble:       {measure: measureLine(PrefixDouble), decode: decodeDouble},
		PrefixBulkString:   {measure: measureBulkString, decode: decodeBulkOrNull},
		PrefixArray:        {measure: measureArray, decode: decodeArrayOrNull},
		PrefixNull:         {measure: measureNull, decode: decodeNull},
		PrefixBoolean:      {measure: measureBoolean, decode: decodeBoolean},
		PrefixMap:          {measure: measureContainer(PrefixMap, 2), decode: decodeMap},
		PrefixSet:          {measure: measureContainer(PrefixSet, 1), decode: decodeSet},
	}
}

const (
	literalNull           = "_\r\n"
	literalTrue           = "#t\r\n"
	literalFalse          = "#f\r\n"
	literalNullBulkString = "$-1\r\n"
	literalNullArray      = "*-1\r\n"
)

// ExpectLength 计算 buf 开头恰好一个完整帧占用的字节数，不消费任何数据。
// 数据不够时返回 ErrNotComplete，嵌套元素的任何错误都会原样向上传递。
func ExpectLength(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, ErrNotComplete
	}
	c, ok := codecs[buf[0]]
	if !ok {
		return 0, unknownPrefix(buf[0])
	}
	return c.measure(buf)
}

func unknownPrefix(b byte) error {
	return fmt.Errorf("%w: unknown prefix %q", ErrInvalidFrameType, b)
}

// lineEnd 返回首个 CRLF 中 '\r' 的下标
func lineEnd(buf []byte, prefix byte) (int, error) {
	if len(buf) < 3 {
		return 0, ErrNotComplete
	}
	if buf[0] != prefix {
		return 0, fmt.Errorf("%w: expect %q, got %q", ErrInvalidFrameType, prefix, buf[0])
	}
	idx := bytes.Index(buf[1:], CRLF)
	if idx < 0 {
		return 0, ErrNotComplete
	}
	return idx + 1, nil
}

// parseLength 解析 <prefix><n>\r\n 头部，返回 '\r' 下标和声明的长度
func parseLength(buf []byte, prefix byte) (int, int, error) {
	end, err := lineEnd(buf, prefix)
	if err != nil {
		return 0, 0, err
	}
	// 长度只允许 [-]<digits>，Atoi 会额外接受前导 '+'
	n, err := strconv.Atoi(string(buf[1:end]))
	if err != nil || buf[1] == '+' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFrameLength, buf[1:end])
	}
	return end, n, nil
}

// matchFixed 匹配固定字面量，buf 是字面量的前缀时返回 ErrNotComplete
func matchFixed(buf []byte, literal string) error {
	if len(buf) < 3 {
		return ErrNotComplete
	}
	if len(buf) < len(literal) {
		if literal[:len(buf)] == string(buf) {
			return ErrNotComplete
		}
		return fmt.Errorf("%w: expect %q, got %q", ErrInvalidFrameType, literal, buf)
	}
	if string(buf[:len(literal)]) != literal {
		return fmt.Errorf("%w: expect %q, got %q", ErrInvalidFrameType, literal, buf[:len(literal)])
	}
	return nil
}

func measureLine(prefix byte) func([]byte) (int, error) {
	return func(buf []byte) (int, error) {
		end, err := lineEnd(buf, prefix)
		if err != nil {
			return 0, err
		}
		return end + crlfLen, nil
	}
}

func measureNull(buf []byte) (int, error) {
	if err := matchFixed(buf, literalNull); err != nil {
		return 0, err
	}
	return len(literalNull), nil
}

func measureBoolean(buf []byte) (int, error) {
	if _, err := matchBoolean(buf); err != nil {
		return 0, err
	}
	return len(literalTrue), nil
}

func matchBoolean(buf []byte) (bool, error) {
	errTrue := matchFixed(buf, literalTrue)
	if errTrue == nil {
		return true, nil
	}
	errFalse := matchFixed(buf, literalFalse)
	if errFalse == nil {
		return false, nil
	}
	if IsNotComplete(errTrue) || IsNotComplete(errFalse) {
		return false, ErrNotComplete
	}
	got := buf
	if len(got) > len(literalTrue) {
		got = got[:len(literalTrue)]
	}
	return false, fmt.Errorf("%w: expect boolean, got %q", ErrInvalidFrameType, got)
}

func measureBulkString(buf []byte) (int, error) {
	err := matchFixed(buf, literalNullBulkString)
	if err == nil {
		return len(literalNullBulkString), nil
	}
	if IsNotComplete(err) {
		return 0, err
	}

	end, n, err := parseLength(buf, PrefixBulkString)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: bulk string length %d", ErrInvalidFrameLength, n)
	}
	// 先比较剩余长度，避免 n 很大时加法溢出
	if len(buf)-end-2*crlfLen < n {
		return 0, ErrNotComplete
	}
	return end + crlfLen + n + crlfLen, nil
}

func measureArray(buf []byte) (int, error) {
	err := matchFixed(buf, literalNullArray)
	if err == nil {
		return len(literalNullArray), nil
	}
	if IsNotComplete(err) {
		return 0, err
	}
	return measureContainer(PrefixArray, 1)(buf)
}

// measureContainer 递归计算容器帧的总长度，map 每个条目包含 key 和 value 两个帧
func measureContainer(prefix byte, framesPerEntry int) func([]byte) (int, error) {
	return func(buf []byte) (int, error) {
		end, n, err := parseLength(buf, prefix)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, fmt.Errorf("%w: %q count %d", ErrInvalidFrameLength, prefix, n)
		}
		if n > len(buf) {
			return 0, ErrNotComplete
		}
		return calcTotalLength(buf, end, n*framesPerEntry)
	}
}

func calcTotalLength(buf []byte, end, frames int) (int, error) {
	total := end + crlfLen
	for i := 0; i < frames; i++ {
		if total > len(buf) {
			return 0, ErrNotComplete
		}
		l, err := ExpectLength(buf[total:])
		if err != nil {
			return 0, err
		}
		total += l
	}
	return total, nil
}
