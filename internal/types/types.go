package types

import "strings"

// CmdLine 是命令行的别名，例如: set key val -> [][]byte
type CmdLine [][]byte

// Name 返回小写的命令名
func (c CmdLine) Name() string {
	if len(c) == 0 {
		return ""
	}
	return strings.ToLower(string(c[0]))
}

// Args 返回命令名之后的参数
func (c CmdLine) Args() [][]byte {
	if len(c) == 0 {
		return nil
	}
	return c[1:]
}

// DataEntity 代表数据库中的数据实体
// Data 取值: []byte (string), map[string][]byte (hash), map[string]struct{} (set)
type DataEntity struct {
	Data interface{}
}
