package command

import (
	"testing"
	"time"

	"simpleredis/internal/resp"
	"simpleredis/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("lookup is case insensitive", func(t *testing.T) {
		for _, name := range []string{"get", "GET", "GeT"} {
			cmd, ok := GetCmd(name)
			require.True(t, ok, name)
			assert.Equal(t, "get", cmd.Name)
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		cmd, ok := GetCmd("nosuch")
		assert.False(t, ok)
		assert.Nil(t, cmd)
	})

	t.Run("all commands registered", func(t *testing.T) {
		assert.ElementsMatch(t, []string{
			"ping", "echo", "del", "exists", "expire", "ttl", "persist", "dbsize", "flushdb", "get", "set",
			"hset", "hget", "hmget", "hgetall", "hdel",
			"sadd", "srem", "sismember", "smembers", "scard",
		}, Names())
	})
}

func TestValidateArity(t *testing.T) {
	tests := []struct {
		arity int
		n     int
		want  bool
	}{
		{2, 2, true},
		{2, 1, false},
		{2, 3, false},
		{-2, 2, true},
		{-2, 5, true},
		{-2, 1, false},
		{-1, 1, true},
	}
	for _, tc := range tests {
		line := make([][]byte, tc.n)
		assert.Equal(t, tc.want, ValidateArity(tc.arity, line), "arity=%d n=%d", tc.arity, tc.n)
	}
}

func TestExecPingEcho(t *testing.T) {
	db := NewMockDB()
	assert.Equal(t, resp.PongReply, exec(db, "PING"))
	assertEqualBulk(t, exec(db, "PING", "hi"), "hi")
	assertErrorReply(t, exec(db, "PING", "a", "b"), "wrong number of arguments for 'ping'")
	assertEqualBulk(t, exec(db, "ECHO", "hello world"), "hello world")
	assertErrorReply(t, exec(db, "ECHO"), "wrong number of arguments for 'echo'")
}

func TestExecDel(t *testing.T) {
	db := NewMockDB()

	// 准备数据
	db.PutEntity("k1", &types.DataEntity{Data: []byte("v1")}, time.Time{})
	db.PutEntity("k2", &types.DataEntity{Data: []byte("v2")}, time.Time{})
	db.PutEntity("k3", &types.DataEntity{Data: []byte("v3")}, time.Time{})

	t.Run("delete multiple existing keys", func(t *testing.T) {
		assertEqualInt(t, execDel(db, bulks("k1", "k2")), 2)

		_, exists := db.GetEntity("k1")
		assert.False(t, exists, "k1 should be deleted")
		_, exists = db.GetEntity("k2")
		assert.False(t, exists, "k2 should be deleted")
		_, exists = db.GetEntity("k3")
		assert.True(t, exists, "k3 should still exist")
	})

	t.Run("delete non-existing keys", func(t *testing.T) {
		assertEqualInt(t, execDel(db, bulks("k99", "k100")), 0)
	})

	t.Run("mixed existing and non-existing", func(t *testing.T) {
		db.PutEntity("k4", &types.DataEntity{Data: []byte("v4")}, time.Time{})
		assertEqualInt(t, execDel(db, bulks("k3", "k4", "k5")), 2)
	})

	t.Run("expired key is not counted", func(t *testing.T) {
		db.PutEntity("old", &types.DataEntity{Data: []byte("v")}, time.Time{})
		db.SetExpire("old", time.Now().Add(-time.Second))
		assertEqualInt(t, execDel(db, bulks("old")), 0)
	})
}

func TestExecExists(t *testing.T) {
	db := NewMockDB()
	exec(db, "SET", "a", "1")
	exec(db, "SADD", "s", "x")

	assertEqualInt(t, exec(db, "EXISTS", "a"), 1)
	assertEqualInt(t, exec(db, "EXISTS", "a", "s", "missing"), 2)
	assertEqualInt(t, exec(db, "EXISTS", "a", "a"), 2)
	assertErrorReply(t, exec(db, "EXISTS"), "wrong number of arguments")
}

func TestExecExpireTTL(t *testing.T) {
	db := NewMockDB()

	t.Run("missing key", func(t *testing.T) {
		assertEqualInt(t, exec(db, "EXPIRE", "nokey", "10"), 0)
		assertEqualInt(t, exec(db, "TTL", "nokey"), -2)
	})

	t.Run("no ttl", func(t *testing.T) {
		exec(db, "SET", "k", "v")
		assertEqualInt(t, exec(db, "TTL", "k"), -1)
	})

	t.Run("set ttl", func(t *testing.T) {
		assertEqualInt(t, exec(db, "EXPIRE", "k", "100"), 1)
		ttl, ok := exec(db, "TTL", "k").(resp.Integer)
		require.True(t, ok)
		assert.InDelta(t, 100, int64(ttl), 1)
	})

	t.Run("non positive deletes", func(t *testing.T) {
		exec(db, "SET", "gone", "v")
		assertEqualInt(t, exec(db, "EXPIRE", "gone", "0"), 1)
		assertEqualInt(t, exec(db, "EXISTS", "gone"), 0)

		exec(db, "SET", "gone", "v")
		assertEqualInt(t, exec(db, "EXPIRE", "gone", "-5"), 1)
		assertNullReply(t, exec(db, "GET", "gone"))
	})

	t.Run("invalid seconds", func(t *testing.T) {
		assertErrorReply(t, exec(db, "EXPIRE", "k", "abc"), "not an integer")
	})

	t.Run("seconds overflow duration", func(t *testing.T) {
		exec(db, "SET", "big", "v")
		assertErrorReply(t, exec(db, "EXPIRE", "big", "9223372036854775"), "invalid expire time in 'expire' command")
		assertEqualBulk(t, exec(db, "GET", "big"), "v")
		assertEqualInt(t, exec(db, "TTL", "big"), -1)

		assertEqualInt(t, exec(db, "EXPIRE", "big", "9223372036"), 1)
		assertEqualBulk(t, exec(db, "GET", "big"), "v")
	})

	t.Run("persist", func(t *testing.T) {
		exec(db, "SET", "p", "v", "EX", "100")
		assertEqualInt(t, exec(db, "PERSIST", "p"), 1)
		assertEqualInt(t, exec(db, "TTL", "p"), -1)
		assertEqualInt(t, exec(db, "PERSIST", "p"), 0)
		assertEqualInt(t, exec(db, "PERSIST", "nokey"), 0)
	})

	t.Run("expired key", func(t *testing.T) {
		exec(db, "SET", "short", "v")
		db.SetExpire("short", time.Now().Add(-time.Millisecond))
		assertEqualInt(t, exec(db, "TTL", "short"), -2)
		assertNullReply(t, exec(db, "GET", "short"))
	})
}

func TestExecDBSizeFlushDB(t *testing.T) {
	db := NewMockDB()
	exec(db, "SET", "a", "1")
	exec(db, "HSET", "h", "f", "v")
	exec(db, "SADD", "s", "x")
	assertEqualInt(t, exec(db, "DBSIZE"), 3)

	assertErrorReply(t, exec(db, "FLUSHDB", "LATER"), "syntax error")
	assertErrorReply(t, exec(db, "DBSIZE", "x"), "wrong number of arguments for 'dbsize'")
	assertEqualInt(t, exec(db, "DBSIZE"), 3)

	assertOKReply(t, exec(db, "FLUSHDB"))
	assertEqualInt(t, exec(db, "DBSIZE"), 0)
	assertNullReply(t, exec(db, "GET", "a"))

	exec(db, "SET", "b", "1")
	assertOKReply(t, exec(db, "flushdb", "async"))
	assertEqualInt(t, exec(db, "EXISTS", "b"), 0)
}
