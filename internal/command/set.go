package command

import (
	"sort"

	"simpleredis/internal/resp"
	"simpleredis/internal/types"
)

type set = map[string]struct{}

func getSet(entity *types.DataEntity) (set, resp.Frame) {
	s, ok := entity.Data.(set)
	if !ok {
		return nil, resp.MakeWrongTypeErrReply()
	}
	return s, nil
}

// SADD key member [member ...]
func execSAdd(db types.Database, args [][]byte) resp.Frame {
	var reply resp.Frame
	db.Update(string(args[0]), func(entity *types.DataEntity) (*types.DataEntity, bool) {
		if entity == nil {
			entity = &types.DataEntity{Data: make(set)}
		}
		s, errReply := getSet(entity)
		if errReply != nil {
			reply = errReply
			return entity, true
		}

		added := 0
		for _, member := range args[1:] {
			if _, ok := s[string(member)]; !ok {
				s[string(member)] = struct{}{}
				added++
			}
		}
		reply = resp.MakeIntReply(int64(added))
		return entity, true
	})
	return reply
}

// SREM key member [member ...]，集合为空时删除 key
func execSRem(db types.Database, args [][]byte) resp.Frame {
	reply := resp.MakeIntReply(0)
	db.Update(string(args[0]), func(entity *types.DataEntity) (*types.DataEntity, bool) {
		if entity == nil {
			return nil, false
		}
		s, errReply := getSet(entity)
		if errReply != nil {
			reply = errReply
			return entity, true
		}

		removed := 0
		for _, member := range args[1:] {
			if _, ok := s[string(member)]; ok {
				delete(s, string(member))
				removed++
			}
		}
		reply = resp.MakeIntReply(int64(removed))
		return entity, len(s) > 0
	})
	return reply
}

// SISMEMBER key member
func execSIsMember(db types.Database, args [][]byte) resp.Frame {
	reply := resp.MakeIntReply(0)
	db.View(string(args[0]), func(entity *types.DataEntity) {
		if entity == nil {
			return
		}
		s, errReply := getSet(entity)
		if errReply != nil {
			reply = errReply
			return
		}
		if _, ok := s[string(args[1])]; ok {
			reply = resp.MakeIntReply(1)
		}
	})
	return reply
}

// SMEMBERS key，按字典序返回
func execSMembers(db types.Database, args [][]byte) resp.Frame {
	var reply resp.Frame = resp.NewSet()
	db.View(string(args[0]), func(entity *types.DataEntity) {
		if entity == nil {
			return
		}
		s, errReply := getSet(entity)
		if errReply != nil {
			reply = errReply
			return
		}
		members := make([]string, 0, len(s))
		for member := range s {
			members = append(members, member)
		}
		sort.Strings(members)

		result := make(resp.Set, len(members))
		for i, member := range members {
			result[i] = resp.BulkStringFromString(member)
		}
		reply = result
	})
	return reply
}

// SCARD key
func execSCard(db types.Database, args [][]byte) resp.Frame {
	reply := resp.MakeIntReply(0)
	db.View(string(args[0]), func(entity *types.DataEntity) {
		if entity == nil {
			return
		}
		s, errReply := getSet(entity)
		if errReply != nil {
			reply = errReply
			return
		}
		reply = resp.MakeIntReply(int64(len(s)))
	})
	return reply
}
