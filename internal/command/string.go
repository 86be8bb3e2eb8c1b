package command

import (
	"strconv"
	"strings"
	"time"

	"simpleredis/internal/common"
	"simpleredis/internal/resp"
	"simpleredis/internal/types"
)

func getString(entity *types.DataEntity) ([]byte, resp.Frame) {
	val, ok := entity.Data.([]byte)
	if !ok {
		return nil, resp.MakeWrongTypeErrReply()
	}
	return val, nil
}

// GET key，不存在时返回 Null
func execGet(db types.Database, args [][]byte) resp.Frame {
	var reply resp.Frame
	db.View(string(args[0]), func(entity *types.DataEntity) {
		if entity == nil {
			reply = resp.MakeNullReply()
			return
		}
		val, errReply := getString(entity)
		if errReply != nil {
			reply = errReply
			return
		}
		reply = resp.MakeBulkReply(val)
	})
	return reply
}

type setOption struct {
	nx, xx bool
	ttl    time.Duration
}

func parseSetOption(args [][]byte) (setOption, resp.Frame) {
	var opt setOption
	for i := 0; i < len(args); i++ {
		switch strings.ToUpper(string(args[i])) {
		case "NX":
			opt.nx = true
		case "XX":
			opt.xx = true
		case "EX", "PX":
			if opt.ttl != 0 || i+1 >= len(args) {
				return opt, resp.MakeErrReply("ERR syntax error")
			}
			n, err := strconv.ParseInt(string(args[i+1]), 10, 64)
			if err != nil {
				return opt, resp.MakeErrReply(errNotInteger)
			}
			unit := time.Second
			if strings.EqualFold(string(args[i]), "PX") {
				unit = time.Millisecond
			}
			ttl, ok := expireDuration(n, unit)
			if !ok || n <= 0 {
				return opt, resp.MakeErrReply(invalidExpireTime("set"))
			}
			opt.ttl = ttl
			i++
		default:
			return opt, resp.MakeErrReply("ERR syntax error")
		}
	}
	if opt.nx && opt.xx {
		return opt, resp.MakeErrReply("ERR syntax error")
	}
	return opt, nil
}

// SET key value [EX seconds|PX milliseconds] [NX|XX]
func execSet(db types.Database, args [][]byte) resp.Frame {
	key := string(args[0])
	opt, errReply := parseSetOption(args[2:])
	if errReply != nil {
		return errReply
	}

	entity := &types.DataEntity{Data: common.CloneBytes(args[1])}
	var expireAt time.Time
	if opt.ttl > 0 {
		expireAt = time.Now().Add(opt.ttl)
	}

	// 不带 EX/PX 的 SET 会清除旧的过期时间
	switch {
	case opt.nx:
		if db.PutIfAbsent(key, entity, expireAt) == 0 {
			return resp.MakeNullReply()
		}
	case opt.xx:
		if db.PutIfExists(key, entity, expireAt) == 0 {
			return resp.MakeNullReply()
		}
	default:
		db.PutEntity(key, entity, expireAt)
	}
	return resp.MakeOkReply()
}
