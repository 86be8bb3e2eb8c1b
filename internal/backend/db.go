package backend

import (
	"time"

	"simpleredis/internal/types"
	"simpleredis/pkg/datastruct"
)

// DB 是带过期时间的键空间，实现 types.Database
// 锁顺序固定为先 data 分片再 ttlMap 分片
type DB struct {
	data   *datastruct.ConcurrentDict[*types.DataEntity] // 核心数据存储
	ttlMap *datastruct.ConcurrentDict[time.Time]         // 过期时间存储，对标 Redis 的 expires
}

var _ types.Database = (*DB)(nil)

func MakeDB(shards int) *DB {
	return &DB{
		data:   datastruct.MakeConcurrent[*types.DataEntity](shards),
		ttlMap: datastruct.MakeConcurrent[time.Time](shards),
	}
}

// GetEntity 已过期的 key 会被惰性删除
func (db *DB) GetEntity(key string) (*types.DataEntity, bool) {
	entity, ok := db.data.Get(key)
	if !ok {
		return nil, false
	}
	if db.IsExpired(key) {
		db.expireIfNeeded(key)
		return nil, false
	}
	return entity, true
}

// PutEntity 覆盖写入，返回 1 表示新增 key；expireAt 为零值时清除过期时间
func (db *DB) PutEntity(key string, entity *types.DataEntity, expireAt time.Time) int {
	if _, existed := db.put(key, entity, expireAt, func(bool) bool { return true }); existed {
		return 0
	}
	return 1
}

// PutIfExists 仅当 key 存活时写入
func (db *DB) PutIfExists(key string, entity *types.DataEntity, expireAt time.Time) int {
	written, _ := db.put(key, entity, expireAt, func(exists bool) bool { return exists })
	return boolToInt(written)
}

// PutIfAbsent 仅当 key 不存在或已过期时写入
func (db *DB) PutIfAbsent(key string, entity *types.DataEntity, expireAt time.Time) int {
	written, _ := db.put(key, entity, expireAt, func(exists bool) bool { return !exists })
	return boolToInt(written)
}

// put 在同一把分片锁内写入值和过期时间
func (db *DB) put(key string, entity *types.DataEntity, expireAt time.Time, cond func(exists bool) bool) (written, existed bool) {
	db.Update(key, func(old *types.DataEntity) (*types.DataEntity, bool) {
		existed = old != nil
		if !cond(existed) {
			return old, existed
		}
		if expireAt.IsZero() {
			db.ttlMap.Remove(key)
		} else {
			db.ttlMap.Put(key, expireAt)
		}
		written = true
		return entity, true
	})
	return written, existed
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Update 在 key 的分片写锁内执行 fn，过期的 key 对 fn 不可见
func (db *DB) Update(key string, fn types.UpdateFunc) {
	db.data.Compute(key, func(old *types.DataEntity, exists bool) (*types.DataEntity, bool) {
		if !exists || db.IsExpired(key) {
			db.ttlMap.Remove(key)
			old = nil
		}
		entity, keep := fn(old)
		if !keep || entity == nil {
			db.ttlMap.Remove(key)
			return nil, false
		}
		return entity, true
	})
}

func (db *DB) View(key string, fn types.ViewFunc) {
	db.data.View(key, func(entity *types.DataEntity, exists bool) {
		if !exists || db.IsExpired(key) {
			entity = nil
		}
		fn(entity)
	})
}

// Remove 删除 key 及其过期时间，已过期的 key 返回 false
func (db *DB) Remove(key string) bool {
	removed := false
	db.data.Compute(key, func(old *types.DataEntity, exists bool) (*types.DataEntity, bool) {
		removed = exists && !db.IsExpired(key)
		db.ttlMap.Remove(key)
		return nil, false
	})
	return removed
}

// SetExpire 只对存在的 key 生效
func (db *DB) SetExpire(key string, expireTime time.Time) {
	db.data.View(key, func(_ *types.DataEntity, exists bool) {
		if exists {
			db.ttlMap.Put(key, expireTime)
		}
	})
}

func (db *DB) GetExpireTime(key string) (time.Time, bool) {
	return db.ttlMap.Get(key)
}

func (db *DB) IsExpired(key string) bool {
	expireTime, ok := db.ttlMap.Get(key)
	if !ok {
		return false // 没有 TTL
	}
	return time.Now().After(expireTime)
}

// DeleteTTL 移除存活 key 的过期时间，key 不存在或没有过期时间时返回 false
func (db *DB) DeleteTTL(key string) bool {
	removed := false
	db.data.View(key, func(_ *types.DataEntity, exists bool) {
		if exists && !db.IsExpired(key) {
			removed = db.ttlMap.Remove(key) == 1
		}
	})
	return removed
}

// Len 返回 key 数量，包含尚未清理的过期 key
func (db *DB) Len() int {
	return db.data.Len()
}

// Flush 清空所有数据
func (db *DB) Flush() {
	db.data.Clear()
	db.ttlMap.Clear()
}

// expireIfNeeded 在写锁内复查，避免误删刚被重新写入的 key
func (db *DB) expireIfNeeded(key string) bool {
	expired := false
	db.data.Compute(key, func(old *types.DataEntity, exists bool) (*types.DataEntity, bool) {
		if exists && db.IsExpired(key) {
			db.ttlMap.Remove(key)
			expired = true
			return nil, false
		}
		return old, exists
	})
	return expired
}

// activeExpire 随机抽样带 TTL 的 key，删除其中已过期的；
// 过期比例超过 1/4 时继续下一轮
func (db *DB) activeExpire(sampleSize int) int {
	const maxRounds = 16

	total := 0
	for round := 0; round < maxRounds; round++ {
		keys := db.ttlMap.RandomKeys(sampleSize)
		if len(keys) == 0 {
			return total
		}

		expired := 0
		for _, key := range keys {
			if db.IsExpired(key) && db.expireIfNeeded(key) {
				expired++
			}
		}
		total += expired
		if expired*4 <= len(keys) {
			return total
		}
	}
	return total
}
