package backend

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"simpleredis/internal/resp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func req(args ...string) resp.Frame {
	bs := make([][]byte, len(args))
	for i, a := range args {
		bs[i] = []byte(a)
	}
	return resp.ArrayOfBulkStrings(bs...)
}

func TestBackend_Exec(t *testing.T) {
	b := New(Options{Shards: 16})

	tests := []struct {
		name string
		req  resp.Frame
		want resp.Frame
	}{
		{"ping", req("PING"), resp.SimpleString("PONG")},
		{"ping lowercase", req("ping"), resp.SimpleString("PONG")},
		{"ping simple string array", resp.NewArray(resp.SimpleString("PING")), resp.SimpleString("PONG")},
		{"set", req("SET", "k", "v"), resp.OkReply},
		{"get", req("GET", "k"), resp.BulkString("v")},
		{"get missing", req("GET", "nokey"), resp.Null{}},
		{"unknown", req("FOO", "bar"), resp.SimpleError("ERR unknown command 'FOO'")},
		{"arity", req("GET"), resp.SimpleError("ERR wrong number of arguments for 'get' command")},
		{"not array", resp.SimpleString("PING"), resp.SimpleError("ERR invalid request")},
		{"empty array", resp.NewArray(), resp.SimpleError("ERR invalid request")},
		{"integer element", resp.NewArray(resp.BulkString("GET"), resp.Integer(1)), resp.SimpleError("ERR invalid request")},
		{"hset", req("HSET", "h", "a", "1", "b", "2"), resp.Integer(2)},
		{"hgetall", req("HGETALL", "h"), resp.NewArray(resp.BulkString("a"), resp.BulkString("1"), resp.BulkString("b"), resp.BulkString("2"))},
		{"sadd", req("SADD", "s", "y", "x"), resp.Integer(2)},
		{"smembers", req("SMEMBERS", "s"), resp.NewSet(resp.BulkString("x"), resp.BulkString("y"))},
		{"wrongtype", req("GET", "s"), resp.SimpleError("WRONGTYPE Operation against a key holding the wrong kind of value")},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, b.Exec(tc.req), tc.name)
	}
}

func TestBackend_OnExec(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	b := New(Options{OnExec: func(name string, reply resp.Frame) {
		mu.Lock()
		defer mu.Unlock()
		seen[name]++
	}})

	b.Exec(req("SET", "k", "v"))
	b.Exec(req("get", "k"))
	b.Exec(req("GET"))
	b.Exec(req("NOPE"))
	b.Exec(resp.Integer(1))

	assert.Equal(t, map[string]int{"set": 1, "get": 2, UnknownCommand: 1}, seen)
}

func TestBackend_ActiveExpireLoop(t *testing.T) {
	b := New(Options{Shards: 16, ExpireInterval: 10 * time.Millisecond, ExpireSample: 5})
	b.Start(context.Background())
	b.Start(context.Background()) // 重复启动无效
	defer b.Close()

	b.Exec(req("SET", "short", "v", "PX", "20"))
	b.Exec(req("SET", "long", "v"))

	assert.Eventually(t, func() bool {
		return b.db.Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, resp.BulkString("v"), b.Exec(req("GET", "long")))
}

func TestBackend_CloseIdempotent(t *testing.T) {
	b := New(Options{})
	b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)
	cancel()
	b.Close()
	b.Close()
}

func TestBackend_ExecRepliesAreSingleFrames(t *testing.T) {
	b := New(Options{Shards: 16})

	tests := []struct {
		name string
		req  resp.Frame
		want resp.Frame
	}{
		{"unknown name with crlf", req("foo\r\n+OK"), resp.SimpleError("ERR unknown command 'foo  +OK'")},
		{"unknown name with invalid utf8", req("\xff\xfe"), resp.SimpleError("ERR unknown command '  '")},
		{"unknown name with nul", req("a\x00b", "x"), resp.SimpleError("ERR unknown command 'a b'")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reply := b.Exec(tc.req)
			assert.Equal(t, tc.want, reply)

			buf := bytes.NewBuffer(resp.Encode(reply))
			decoded, err := resp.Decode(buf)
			require.NoError(t, err)
			assert.Equal(t, tc.want, decoded)
			assert.Zero(t, buf.Len(), "reply must decode as exactly one frame")
		})
	}
}
