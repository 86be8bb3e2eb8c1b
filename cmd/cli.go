package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"simpleredis/internal/common"
	"simpleredis/internal/resp"
	"simpleredis/pkg/connection"
)

var cliAddr string

var cliCmd = &cobra.Command{
	Use:   "cli [command [arg ...]]",
	Short: "Start a CLI client, or run a single command when arguments are given",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := net.Dial("tcp", cliAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", cliAddr, err)
		}
		conn := connection.NewTCPConnection(raw)
		defer conn.Close()

		if len(args) > 0 {
			cmdLine := make([][]byte, len(args))
			for i, a := range args {
				cmdLine[i] = []byte(a)
			}
			return execOnce(conn, cmdLine, cmd.OutOrStdout())
		}
		return repl(conn, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	cliCmd.Flags().StringVar(&cliAddr, "addr", "127.0.0.1:6379", "server address to connect to")
	rootCmd.AddCommand(cliCmd)
}

// repl 逐行读取命令，发送后打印回复，quit/exit 退出
func repl(conn connection.Connection, in io.Reader, out io.Writer) error {
	stdin := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, conn.RemoteAddr()+"> ")
		if !stdin.Scan() {
			fmt.Fprintln(out)
			return stdin.Err()
		}

		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			fmt.Fprintln(out, "bye")
			return nil
		}

		if err := execOnce(conn, common.SplitArgs(line), out); err != nil {
			return err
		}
	}
}

func execOnce(conn connection.Connection, cmdLine [][]byte, out io.Writer) error {
	if err := conn.WriteFrame(resp.ArrayOfBulkStrings(cmdLine...)); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	reply, err := conn.ReadFrame()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("server closed the connection")
		}
		return fmt.Errorf("read response error: %w", err)
	}
	fmt.Fprintln(out, formatFrame(reply, ""))
	return nil
}

// formatFrame 以 redis-cli 的风格输出，嵌套容器按层缩进
func formatFrame(frame resp.Frame, indent string) string {
	switch f := frame.(type) {
	case resp.SimpleString:
		return string(f)
	case resp.SimpleError:
		return "(error) " + string(f)
	case resp.Integer:
		return "(integer) " + strconv.FormatInt(int64(f), 10)
	case resp.BulkString:
		return strconv.Quote(string(f))
	case resp.NullBulkString, resp.NullArray, resp.Null, nil:
		return "(nil)"
	case resp.Boolean:
		return "(" + strconv.FormatBool(bool(f)) + ")"
	case resp.Double:
		return "(double) " + strings.TrimPrefix(strings.TrimSuffix(string(resp.Encode(f)[1:]), "\r\n"), "+")
	case resp.Array:
		return formatList([]resp.Frame(f), "(empty array)", indent)
	case resp.Set:
		return formatList([]resp.Frame(f), "(empty set)", indent)
	case resp.Map:
		if len(f) == 0 {
			return "(empty hash)"
		}
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		width := len(strconv.Itoa(len(keys)))
		child := indent + strings.Repeat(" ", width+2)
		lines := make([]string, len(keys))
		for i, k := range keys {
			prefix := fmt.Sprintf("%*d# ", width, i+1)
			if i > 0 {
				prefix = indent + prefix
			}
			lines[i] = prefix + strconv.Quote(k) + " => " + formatFrame(f[k], child)
		}
		return strings.Join(lines, "\n")
	}
	return fmt.Sprintf("%v", frame)
}

func formatList(items []resp.Frame, empty, indent string) string {
	if len(items) == 0 {
		return empty
	}
	width := len(strconv.Itoa(len(items)))
	child := indent + strings.Repeat(" ", width+2)
	lines := make([]string, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("%*d) ", width, i+1)
		if i > 0 {
			prefix = indent + prefix
		}
		lines[i] = prefix + formatFrame(item, child)
	}
	return strings.Join(lines, "\n")
}
