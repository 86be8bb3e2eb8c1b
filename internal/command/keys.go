package command

import (
	"math"
	"strconv"
	"strings"
	"time"

	"simpleredis/internal/resp"
	"simpleredis/internal/types"
)

const errNotInteger = "ERR value is not an integer or out of range"

func invalidExpireTime(cmd string) string {
	return "ERR invalid expire time in '" + cmd + "' command"
}

// expireDuration 把 n 个 unit 换算成 time.Duration，溢出时返回 false
func expireDuration(n int64, unit time.Duration) (time.Duration, bool) {
	if n > math.MaxInt64/int64(unit) || n < math.MinInt64/int64(unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

// PING [message]
func execPing(db types.Database, args [][]byte) resp.Frame {
	switch len(args) {
	case 0:
		return resp.PongReply
	case 1:
		return resp.NewBulkString(args[0])
	}
	return resp.MakeArgNumErrReply("ping")
}

// ECHO message
func execEcho(db types.Database, args [][]byte) resp.Frame {
	return resp.NewBulkString(args[0])
}

// DEL key [key ...]
func execDel(db types.Database, args [][]byte) resp.Frame {
	deleted := 0
	for _, arg := range args {
		if db.Remove(string(arg)) {
			deleted++
		}
	}
	return resp.MakeIntReply(int64(deleted))
}

// EXISTS key [key ...]，重复的 key 重复计数
func execExists(db types.Database, args [][]byte) resp.Frame {
	count := 0
	for _, arg := range args {
		if _, exists := db.GetEntity(string(arg)); exists {
			count++
		}
	}
	return resp.MakeIntReply(int64(count))
}

// EXPIRE key seconds
func execExpire(db types.Database, args [][]byte) resp.Frame {
	key := string(args[0])
	seconds, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return resp.MakeErrReply(errNotInteger)
	}

	ttl, ok := expireDuration(seconds, time.Second)
	if !ok {
		return resp.MakeErrReply(invalidExpireTime("expire"))
	}

	if _, exists := db.GetEntity(key); !exists {
		return resp.MakeIntReply(0)
	}

	if seconds <= 0 {
		db.Remove(key)
		return resp.MakeIntReply(1)
	}

	db.SetExpire(key, time.Now().Add(ttl))
	return resp.MakeIntReply(1)
}

// TTL key: -2 不存在，-1 没有过期时间
func execTTL(db types.Database, args [][]byte) resp.Frame {
	key := string(args[0])
	if _, exists := db.GetEntity(key); !exists {
		return resp.MakeIntReply(-2)
	}

	expireAt, ok := db.GetExpireTime(key)
	if !ok {
		return resp.MakeIntReply(-1)
	}

	remain := time.Until(expireAt)
	if remain < 0 {
		return resp.MakeIntReply(-2)
	}
	// 四舍五入到秒
	return resp.MakeIntReply(int64((remain + 500*time.Millisecond) / time.Second))
}

// PERSIST key
func execPersist(db types.Database, args [][]byte) resp.Frame {
	if db.DeleteTTL(string(args[0])) {
		return resp.MakeIntReply(1)
	}
	return resp.MakeIntReply(0)
}

// DBSIZE
func execDBSize(db types.Database, args [][]byte) resp.Frame {
	return resp.MakeIntReply(int64(db.Len()))
}

// FLUSHDB [ASYNC|SYNC]，两种模式都同步清空
func execFlushDB(db types.Database, args [][]byte) resp.Frame {
	if len(args) > 1 {
		return resp.MakeErrReply("ERR syntax error")
	}
	if len(args) == 1 {
		mode := strings.ToUpper(string(args[0]))
		if mode != "ASYNC" && mode != "SYNC" {
			return resp.MakeErrReply("ERR syntax error")
		}
	}
	db.Flush()
	return resp.MakeOkReply()
}
