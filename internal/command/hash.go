package command

import (
	"sort"

	"simpleredis/internal/common"
	"simpleredis/internal/resp"
	"simpleredis/internal/types"
)

type hash = map[string][]byte

func getHash(entity *types.DataEntity) (hash, resp.Frame) {
	h, ok := entity.Data.(hash)
	if !ok {
		return nil, resp.MakeWrongTypeErrReply()
	}
	return h, nil
}

// HSET key field value [field value ...]，返回新增 field 数
func execHSet(db types.Database, args [][]byte) resp.Frame {
	if len(args)%2 != 1 {
		return resp.MakeArgNumErrReply("hset")
	}

	var reply resp.Frame
	db.Update(string(args[0]), func(entity *types.DataEntity) (*types.DataEntity, bool) {
		if entity == nil {
			entity = &types.DataEntity{Data: make(hash)}
		}
		h, errReply := getHash(entity)
		if errReply != nil {
			reply = errReply
			return entity, true
		}

		added := 0
		for i := 1; i < len(args); i += 2 {
			field := string(args[i])
			if _, ok := h[field]; !ok {
				added++
			}
			h[field] = common.CloneBytes(args[i+1])
		}
		reply = resp.MakeIntReply(int64(added))
		return entity, true
	})
	return reply
}

// HGET key field
func execHGet(db types.Database, args [][]byte) resp.Frame {
	reply := resp.MakeNullReply()
	db.View(string(args[0]), func(entity *types.DataEntity) {
		if entity == nil {
			return
		}
		h, errReply := getHash(entity)
		if errReply != nil {
			reply = errReply
			return
		}
		if val, ok := h[string(args[1])]; ok {
			reply = resp.MakeBulkReply(val)
		}
	})
	return reply
}

// HMGET key field [field ...]
func execHMGet(db types.Database, args [][]byte) resp.Frame {
	fields := args[1:]
	values := make([][]byte, len(fields))

	var errReply resp.Frame
	db.View(string(args[0]), func(entity *types.DataEntity) {
		if entity == nil {
			return
		}
		var h hash
		if h, errReply = getHash(entity); errReply != nil {
			return
		}
		for i, field := range fields {
			values[i] = h[string(field)]
		}
	})
	if errReply != nil {
		return errReply
	}
	return resp.MakeMultiBulkReply(values)
}

// HGETALL key，返回 field1 value1 field2 value2 ... 的扁平 Array，按 field 排序
// field 是二进制安全的，不能作为 Map 的 SimpleString key
func execHGetAll(db types.Database, args [][]byte) resp.Frame {
	var reply resp.Frame = resp.NewArray()
	db.View(string(args[0]), func(entity *types.DataEntity) {
		if entity == nil {
			return
		}
		h, errReply := getHash(entity)
		if errReply != nil {
			reply = errReply
			return
		}
		fields := make([]string, 0, len(h))
		for field := range h {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		pairs := make(resp.Array, 0, 2*len(h))
		for _, field := range fields {
			pairs = append(pairs, resp.BulkString(field), resp.BulkString(h[field]))
		}
		reply = pairs
	})
	return reply
}

// HDEL key field [field ...]，hash 为空时删除 key
func execHDel(db types.Database, args [][]byte) resp.Frame {
	reply := resp.MakeIntReply(0)
	db.Update(string(args[0]), func(entity *types.DataEntity) (*types.DataEntity, bool) {
		if entity == nil {
			return nil, false
		}
		h, errReply := getHash(entity)
		if errReply != nil {
			reply = errReply
			return entity, true
		}

		deleted := 0
		for _, field := range args[1:] {
			if _, ok := h[string(field)]; ok {
				delete(h, string(field))
				deleted++
			}
		}
		reply = resp.MakeIntReply(int64(deleted))
		return entity, len(h) > 0
	})
	return reply
}
