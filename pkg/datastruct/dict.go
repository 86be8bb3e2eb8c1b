package datastruct

import (
	"sync"
	"sync/atomic"

	"github.com/spaolacci/murmur3"
	"golang.org/x/exp/rand"
)

// DefaultShardCount 分片数量，必须为 2 的幂次，方便位运算取模
// 数量越多，锁粒度越小，并发度越高，但内存消耗稍大
const DefaultShardCount = 1024

// Consumer 用于遍历的回调，返回 false 则停止遍历
type Consumer[V any] func(key string, val V) bool

// ComputeFunc 在分片锁内执行，old/exists 为当前值；返回 keep=false 表示删除该 key
type ComputeFunc[V any] func(old V, exists bool) (val V, keep bool)

// Dict 抽象接口，屏蔽底层实现细节
type Dict[V any] interface {
	Get(key string) (val V, exists bool)
	Len() int
	Put(key string, val V) (result int)         // 对应 Redis SET
	PutIfAbsent(key string, val V) (result int) // 对应 Redis SETNX
	PutIfExists(key string, val V) (result int)
	Remove(key string) (result int) // 对应 Redis DEL
	Compute(key string, fn ComputeFunc[V])
	View(key string, fn func(val V, exists bool))
	Keys() []string
	ForEach(consumer Consumer[V])
	RandomKeys(limit int) []string // 用于过期抽样
	Clear()
}

type shard[V any] struct {
	m     map[string]V
	mutex sync.RWMutex // 每个分片一把锁
}

// ConcurrentDict 分片并发 Map
type ConcurrentDict[V any] struct {
	table []*shard[V]
	count int64 // 全局数据量统计 (使用原子操作)
	mask  uint32
}

var _ Dict[int] = (*ConcurrentDict[int])(nil)

// MakeConcurrent shardCount 不是 2 的幂次时向上取整
func MakeConcurrent[V any](shardCount int) *ConcurrentDict[V] {
	n := computeCapacity(shardCount)
	shards := make([]*shard[V], n)
	for i := range shards {
		shards[i] = &shard[V]{m: make(map[string]V)}
	}
	return &ConcurrentDict[V]{
		table: shards,
		mask:  uint32(n - 1),
	}
}

func computeCapacity(param int) int {
	if param <= 1 {
		return 1
	}
	n := 1
	for n < param {
		n <<= 1
	}
	return n
}

func (dict *ConcurrentDict[V]) Get(key string) (val V, exists bool) {
	s := dict.getShard(key)
	s.mutex.RLock() // 只加读锁
	defer s.mutex.RUnlock()
	val, exists = s.m[key]
	return
}

func (dict *ConcurrentDict[V]) Put(key string, val V) (result int) {
	s := dict.getShard(key)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.m[key]; ok {
		s.m[key] = val
		return 0 // 覆盖
	}
	s.m[key] = val
	atomic.AddInt64(&dict.count, 1)
	return 1 // 新增
}

func (dict *ConcurrentDict[V]) PutIfAbsent(key string, val V) (result int) {
	s := dict.getShard(key)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.m[key]; ok {
		return 0
	}
	s.m[key] = val
	atomic.AddInt64(&dict.count, 1)
	return 1
}

func (dict *ConcurrentDict[V]) PutIfExists(key string, val V) (result int) {
	s := dict.getShard(key)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.m[key]; ok {
		s.m[key] = val
		return 1
	}
	return 0
}

func (dict *ConcurrentDict[V]) Remove(key string) (result int) {
	s := dict.getShard(key)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.m[key]; ok {
		delete(s.m, key)
		atomic.AddInt64(&dict.count, -1)
		return 1
	}
	return 0
}

// Compute 在同一把分片锁内完成读-改-写，保证单个 key 上的复合操作是原子的
func (dict *ConcurrentDict[V]) Compute(key string, fn ComputeFunc[V]) {
	s := dict.getShard(key)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, exists := s.m[key]
	val, keep := fn(old, exists)
	switch {
	case keep:
		s.m[key] = val
		if !exists {
			atomic.AddInt64(&dict.count, 1)
		}
	case exists:
		delete(s.m, key)
		atomic.AddInt64(&dict.count, -1)
	}
}

// View 在分片读锁内访问当前值，fn 中不能修改字典
func (dict *ConcurrentDict[V]) View(key string, fn func(val V, exists bool)) {
	s := dict.getShard(key)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	val, exists := s.m[key]
	fn(val, exists)
}

func (dict *ConcurrentDict[V]) Clear() {
	for _, s := range dict.table {
		s.mutex.Lock()
		atomic.AddInt64(&dict.count, -int64(len(s.m)))
		s.m = make(map[string]V)
		s.mutex.Unlock()
	}
}

// ForEach 逐个分片遍历，防止长时间锁死整个字典
func (dict *ConcurrentDict[V]) ForEach(consumer Consumer[V]) {
	if dict == nil {
		return
	}
	for _, s := range dict.table {
		s.mutex.RLock()
		continueIter := true
		for key, value := range s.m {
			if continueIter = consumer(key, value); !continueIter {
				break
			}
		}
		s.mutex.RUnlock()
		if !continueIter {
			return
		}
	}
}

func (dict *ConcurrentDict[V]) Keys() []string {
	keys := make([]string, 0, dict.Len())
	dict.ForEach(func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// RandomKeys 随机选起始分片，向后找到第一个未选过的 key；并发删除时结果可能少于 limit
func (dict *ConcurrentDict[V]) RandomKeys(limit int) []string {
	if limit <= 0 {
		return nil
	}
	if limit >= dict.Len() {
		return dict.Keys()
	}

	used := make(map[string]struct{}, limit)
	result := make([]string, 0, limit)
	for len(result) < limit {
		start := rand.Intn(len(dict.table))
		found := false
		for i := 0; i < len(dict.table) && !found; i++ {
			s := dict.table[(start+i)&int(dict.mask)]
			s.mutex.RLock()
			// Go map 的遍历顺序本身是随机的
			for key := range s.m {
				if _, ok := used[key]; !ok {
					used[key] = struct{}{}
					result = append(result, key)
					found = true
					break
				}
			}
			s.mutex.RUnlock()
		}
		if !found {
			break
		}
	}
	return result
}

func (dict *ConcurrentDict[V]) Len() int {
	return int(atomic.LoadInt64(&dict.count))
}

// getShard 根据 key 定位分片
func (dict *ConcurrentDict[V]) getShard(key string) *shard[V] {
	return dict.table[murmur3.Sum32([]byte(key))&dict.mask]
}
