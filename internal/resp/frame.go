package resp

// SimpleString +<text>\r\n
type SimpleString string

// SimpleError -<text>\r\n
type SimpleError string

// Integer :[+|-]<digits>\r\n
type Integer int64

// BulkString $<len>\r\n<bytes>\r\n
type BulkString []byte

// NullBulkString $-1\r\n
type NullBulkString struct{}

// Array *<count>\r\n<frames...>
type Array []Frame

// Null _\r\n
type Null struct{}

// NullArray *-1\r\n
type NullArray struct{}

// Boolean #t\r\n / #f\r\n
type Boolean bool

// Double ,<float>\r\n
type Double float64

// Map %<count>\r\n 后接 count 组 (SimpleString key, Frame value)
type Map map[string]Frame

// Set ~<count>\r\n<frames...>
// 按有序列表存储，保留重复元素和顺序
type Set []Frame

func NewSimpleString(s string) SimpleString { return SimpleString(s) }

func NewSimpleError(s string) SimpleError { return SimpleError(s) }

func NewInteger(n int64) Integer { return Integer(n) }

func NewBulkString(b []byte) BulkString { return BulkString(b) }

func BulkStringFromString(s string) BulkString { return BulkString(s) }

func NewArray(frames ...Frame) Array {
	if frames == nil {
		return Array{}
	}
	return Array(frames)
}

func NewSet(frames ...Frame) Set {
	if frames == nil {
		return Set{}
	}
	return Set(frames)
}

func NewMap() Map { return Map{} }

func NewBoolean(b bool) Boolean { return Boolean(b) }

func NewDouble(f float64) Double { return Double(f) }

// ArrayOfBulkStrings 把命令参数打包成请求帧，例如 SET key val
func ArrayOfBulkStrings(args ...[]byte) Array {
	arr := make(Array, len(args))
	for i, arg := range args {
		arr[i] = BulkString(arg)
	}
	return arr
}

func (s SimpleString) String() string { return string(s) }

func (e SimpleError) String() string { return string(e) }

func (b BulkString) String() string { return string(b) }
