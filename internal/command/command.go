package command

import (
	"strings"

	"simpleredis/internal/resp"
	"simpleredis/internal/types"
)

// ExecFunc 定义每个命令的执行函数签名，args 不包含命令名
type ExecFunc func(db types.Database, args [][]byte) resp.Frame

// Command 定义了一个命令的元数据
type Command struct {
	Name     string   // 命令名称
	Executor ExecFunc // 执行函数
	Arity    int      // 参数数量限制 (例如: GET key 是 2，如果允许不定参数用负数表示最少个数)
}

// 全局命令注册表
var cmdTable = make(map[string]*Command)

func RegisterCommand(cmd *Command) {
	name := strings.ToLower(cmd.Name)
	cmdTable[name] = &Command{
		Name:     name,
		Executor: cmd.Executor,
		Arity:    cmd.Arity,
	}
}

// GetCmd 按名称查找命令，大小写不敏感
func GetCmd(name string) (*Command, bool) {
	cmd, ok := cmdTable[strings.ToLower(name)]
	return cmd, ok
}

// ValidateArity 校验参数个数，cmdLine 包含命令名
func ValidateArity(arity int, cmdLine [][]byte) bool {
	n := len(cmdLine)

	if arity >= 0 {
		return n == arity
	}
	return n >= -arity
}

// Names 返回所有已注册的命令名
func Names() []string {
	names := make([]string, 0, len(cmdTable))
	for name := range cmdTable {
		names = append(names, name)
	}
	return names
}
