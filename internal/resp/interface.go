package resp

var (
	CRLF = []byte("\r\n") // RESP 协议的行结束符
)

const crlfLen = 2

// 各类型帧的首字节
const (
	PrefixSimpleString = '+'
	PrefixSimpleError  = '-'
	PrefixInteger      = ':'
	PrefixBulkString   = '$'
	PrefixArray        = '*'
	PrefixNull         = '_'
	PrefixBoolean      = '#'
	PrefixDouble       = ','
	PrefixMap          = '%'
	PrefixSet          = '~'
)

// Frame 是所有 RESP 帧的通用接口，只有本包内的类型可以实现
type Frame interface {
	// ToBytes 将帧转换为符合 RESP 协议的字节切片，用于写入 TCP 连接
	ToBytes() []byte

	appendTo(dst []byte) []byte
}
