package types

import "time"

// UpdateFunc 在 key 所在分片的写锁内执行；entity 为 nil 表示 key 不存在或已过期。
// 返回 keep=false 时删除该 key。
type UpdateFunc func(entity *DataEntity) (newEntity *DataEntity, keep bool)

// ViewFunc 在分片读锁内执行，不允许修改 entity
type ViewFunc func(entity *DataEntity)

// Database 是命令执行所依赖的存储接口
type Database interface {
	// GetEntity 从数据库获取数据实体，已过期的 key 视为不存在
	GetEntity(key string) (*DataEntity, bool)

	// PutEntity 将数据实体存入数据库，并在同一把锁内设置过期时间；
	// expireAt 为零值表示不过期。返回 1 表示新增 key
	PutEntity(key string, entity *DataEntity, expireAt time.Time) int

	// PutIfExists 仅当键存在时更新，返回 1 表示已写入
	PutIfExists(key string, entity *DataEntity, expireAt time.Time) int

	// PutIfAbsent 仅当键不存在时插入，返回 1 表示已写入
	PutIfAbsent(key string, entity *DataEntity, expireAt time.Time) int

	// Update 原子地读-改-写单个 key
	Update(key string, fn UpdateFunc)

	// View 在读锁内访问单个 key
	View(key string, fn ViewFunc)

	// Remove 删除指定键
	Remove(key string) bool

	// SetExpire 设置键的过期时间
	SetExpire(key string, expireTime time.Time)

	// GetExpireTime 获取键的过期时间
	GetExpireTime(key string) (time.Time, bool)

	// IsExpired 检查键是否已过期
	IsExpired(key string) bool

	// DeleteTTL 删除键的过期时间，返回是否确实移除
	DeleteTTL(key string) bool

	// Len 返回键数量，可能包含尚未清理的过期键
	Len() int

	// Flush 清空所有键
	Flush()
}
