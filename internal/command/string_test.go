package command

import (
	"testing"
	"time"

	"simpleredis/internal/resp"
	"simpleredis/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecGetSet(t *testing.T) {
	db := NewMockDB()

	t.Run("get missing returns null", func(t *testing.T) {
		assertNullReply(t, exec(db, "GET", "nokey"))
	})

	t.Run("set then get", func(t *testing.T) {
		assertOKReply(t, exec(db, "SET", "k", "hello"))
		assertEqualBulk(t, exec(db, "GET", "k"), "hello")

		assertOKReply(t, exec(db, "set", "k", "world"))
		assertEqualBulk(t, exec(db, "get", "k"), "world")
	})

	t.Run("empty and binary values", func(t *testing.T) {
		assertOKReply(t, exec(db, "SET", "empty", ""))
		assertEqualBulk(t, exec(db, "GET", "empty"), "")

		assertOKReply(t, exec(db, "SET", "bin", "a\r\nb\x00"))
		assertEqualBulk(t, exec(db, "GET", "bin"), "a\r\nb\x00")
	})

	t.Run("stored value does not alias argument", func(t *testing.T) {
		args := bulks("alias", "value")
		assertOKReply(t, execSet(db, args))
		args[1][0] = 'X'
		assertEqualBulk(t, exec(db, "GET", "alias"), "value")
	})

	t.Run("wrong type", func(t *testing.T) {
		exec(db, "SADD", "myset", "a")
		assertWrongType(t, exec(db, "GET", "myset"))
	})

	t.Run("set overwrites other types", func(t *testing.T) {
		exec(db, "HSET", "h", "f", "v")
		assertOKReply(t, exec(db, "SET", "h", "plain"))
		assertEqualBulk(t, exec(db, "GET", "h"), "plain")
	})

	t.Run("arity", func(t *testing.T) {
		assertErrorReply(t, exec(db, "GET"), "wrong number of arguments for 'get'")
		assertErrorReply(t, exec(db, "SET", "k"), "wrong number of arguments for 'set'")
	})
}

func TestExecSetOptions(t *testing.T) {
	t.Run("NX", func(t *testing.T) {
		db := NewMockDB()
		assertOKReply(t, exec(db, "SET", "k", "v1", "NX"))
		assertNullReply(t, exec(db, "SET", "k", "v2", "nx"))
		assertEqualBulk(t, exec(db, "GET", "k"), "v1")
	})

	t.Run("XX", func(t *testing.T) {
		db := NewMockDB()
		assertNullReply(t, exec(db, "SET", "k", "v1", "XX"))
		assertNullReply(t, exec(db, "GET", "k"))
		exec(db, "SET", "k", "v1")
		assertOKReply(t, exec(db, "SET", "k", "v2", "XX"))
		assertEqualBulk(t, exec(db, "GET", "k"), "v2")
	})

	t.Run("EX and PX", func(t *testing.T) {
		db := NewMockDB()
		assertOKReply(t, exec(db, "SET", "k", "v", "EX", "100"))
		ttl := exec(db, "TTL", "k").(resp.Integer)
		assert.InDelta(t, 100, int64(ttl), 1)

		assertOKReply(t, exec(db, "SET", "p", "v", "PX", "1500"))
		expireAt, ok := db.GetExpireTime("p")
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(1500*time.Millisecond), expireAt, 200*time.Millisecond)
	})

	t.Run("plain set clears ttl", func(t *testing.T) {
		db := NewMockDB()
		exec(db, "SET", "k", "v", "EX", "100")
		exec(db, "SET", "k", "v2")
		assertEqualInt(t, exec(db, "TTL", "k"), -1)
	})

	t.Run("XX with EX replaces ttl", func(t *testing.T) {
		db := NewMockDB()
		exec(db, "SET", "k", "v")
		assertOKReply(t, exec(db, "SET", "k", "v2", "XX", "EX", "50"))
		ttl := exec(db, "TTL", "k").(resp.Integer)
		assert.InDelta(t, 50, int64(ttl), 1)

		assertOKReply(t, exec(db, "SET", "k", "v3", "XX"))
		assertEqualInt(t, exec(db, "TTL", "k"), -1)
	})

	t.Run("failed NX keeps ttl", func(t *testing.T) {
		db := NewMockDB()
		exec(db, "SET", "k", "v", "EX", "100")
		assertNullReply(t, exec(db, "SET", "k", "v2", "NX"))
		ttl := exec(db, "TTL", "k").(resp.Integer)
		assert.InDelta(t, 100, int64(ttl), 1)
	})

	t.Run("largest ex still in range", func(t *testing.T) {
		db := NewMockDB()
		assertOKReply(t, exec(db, "SET", "k", "v", "EX", "9223372036"))
		assertEqualBulk(t, exec(db, "GET", "k"), "v")
	})

	t.Run("NX on expired key", func(t *testing.T) {
		db := NewMockDB()
		db.PutEntity("k", &types.DataEntity{Data: []byte("old")}, time.Time{})
		db.SetExpire("k", time.Now().Add(-time.Second))
		assertOKReply(t, exec(db, "SET", "k", "new", "NX"))
		assertEqualBulk(t, exec(db, "GET", "k"), "new")
		assertEqualInt(t, exec(db, "TTL", "k"), -1)
	})

	t.Run("invalid options", func(t *testing.T) {
		db := NewMockDB()
		tests := []struct {
			name string
			line []string
			want string
		}{
			{"nx and xx", []string{"SET", "k", "v", "NX", "XX"}, "syntax error"},
			{"unknown option", []string{"SET", "k", "v", "KEEP"}, "syntax error"},
			{"ex missing value", []string{"SET", "k", "v", "EX"}, "syntax error"},
			{"ex twice", []string{"SET", "k", "v", "EX", "1", "PX", "1"}, "syntax error"},
			{"ex not integer", []string{"SET", "k", "v", "EX", "abc"}, "not an integer"},
			{"ex zero", []string{"SET", "k", "v", "EX", "0"}, "invalid expire time"},
			{"px negative", []string{"SET", "k", "v", "PX", "-1"}, "invalid expire time"},
			{"ex overflows duration", []string{"SET", "k", "v", "EX", "9223372036854775"}, "invalid expire time in 'set'"},
			{"px overflows duration", []string{"SET", "k", "v", "PX", "9223372036855"}, "invalid expire time in 'set'"},
		}
		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				assertErrorReply(t, exec(db, tc.line...), tc.want)
				assertNullReply(t, exec(db, "GET", "k"))
			})
		}
	})
}
