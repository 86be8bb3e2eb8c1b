package command

import (
	"sync"
	"testing"
	"time"

	"simpleredis/internal/resp"
	"simpleredis/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDB 是 types.Database 的单锁内存实现，只用于命令测试
type MockDB struct {
	data map[string]*types.DataEntity
	ttl  map[string]time.Time
	mu   sync.RWMutex
}

var _ types.Database = (*MockDB)(nil)

func NewMockDB() *MockDB {
	return &MockDB{
		data: make(map[string]*types.DataEntity),
		ttl:  make(map[string]time.Time),
	}
}

func (m *MockDB) expiredLocked(key string) bool {
	expireTime, ok := m.ttl[key]
	return ok && time.Now().After(expireTime)
}

func (m *MockDB) getLocked(key string) (*types.DataEntity, bool) {
	if m.expiredLocked(key) {
		return nil, false
	}
	entity, ok := m.data[key]
	return entity, ok
}

func (m *MockDB) GetEntity(key string) (*types.DataEntity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(key)
}

// putLocked 与 DB.put 语义一致：值和过期时间一起写入
func (m *MockDB) putLocked(key string, entity *types.DataEntity, expireAt time.Time) {
	m.data[key] = entity
	if expireAt.IsZero() {
		delete(m.ttl, key)
	} else {
		m.ttl[key] = expireAt
	}
}

func (m *MockDB) PutEntity(key string, entity *types.DataEntity, expireAt time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.getLocked(key)
	m.putLocked(key, entity, expireAt)
	if exists {
		return 0
	}
	return 1
}

func (m *MockDB) PutIfExists(key string, entity *types.DataEntity, expireAt time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.getLocked(key); !ok {
		return 0
	}
	m.putLocked(key, entity, expireAt)
	return 1
}

func (m *MockDB) PutIfAbsent(key string, entity *types.DataEntity, expireAt time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.getLocked(key); ok {
		return 0
	}
	m.putLocked(key, entity, expireAt)
	return 1
}

func (m *MockDB) Update(key string, fn types.UpdateFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, exists := m.getLocked(key)
	if !exists {
		delete(m.data, key)
		delete(m.ttl, key)
		old = nil
	}
	entity, keep := fn(old)
	if !keep {
		delete(m.data, key)
		delete(m.ttl, key)
		return
	}
	m.data[key] = entity
}

func (m *MockDB) View(key string, fn types.ViewFunc) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entity, _ := m.getLocked(key)
	fn(entity)
}

func (m *MockDB) Remove(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.getLocked(key)
	delete(m.data, key)
	delete(m.ttl, key)
	return exists
}

func (m *MockDB) SetExpire(key string, expireTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttl[key] = expireTime
}

func (m *MockDB) GetExpireTime(key string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expireTime, ok := m.ttl[key]
	return expireTime, ok
}

func (m *MockDB) IsExpired(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expiredLocked(key)
}

func (m *MockDB) DeleteTTL(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.getLocked(key); !ok {
		return false
	}
	if _, ok := m.ttl[key]; !ok {
		return false
	}
	delete(m.ttl, key)
	return true
}

func (m *MockDB) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MockDB) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]*types.DataEntity)
	m.ttl = make(map[string]time.Time)
}

// exec 模拟一次完整调用：查表、校验参数个数、执行
func exec(db types.Database, line ...string) resp.Frame {
	cmdLine := make([][]byte, len(line))
	for i, s := range line {
		cmdLine[i] = []byte(s)
	}
	cmd, ok := GetCmd(line[0])
	if !ok {
		return resp.MakeErrReply("ERR unknown command '" + line[0] + "'")
	}
	if !ValidateArity(cmd.Arity, cmdLine) {
		return resp.MakeArgNumErrReply(cmd.Name)
	}
	return cmd.Executor(db, cmdLine[1:])
}

func bulks(vals ...string) [][]byte {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out
}

// 断言函数
func assertEqualInt(t *testing.T, reply resp.Frame, expected int64) {
	t.Helper()
	assert.Equal(t, resp.Integer(expected), reply)
}

func assertEqualBulk(t *testing.T, reply resp.Frame, expected string) {
	t.Helper()
	assert.Equal(t, resp.BulkString(expected), reply)
}

func assertOKReply(t *testing.T, reply resp.Frame) {
	t.Helper()
	assert.Equal(t, resp.OkReply, reply)
}

func assertNullReply(t *testing.T, reply resp.Frame) {
	t.Helper()
	assert.Equal(t, resp.Null{}, reply)
}

// 断言是错误回复且包含 substr
func assertErrorReply(t *testing.T, reply resp.Frame, substr string) {
	t.Helper()
	errReply, ok := reply.(resp.SimpleError)
	require.True(t, ok, "expected resp.SimpleError, got %T", reply)
	assert.Contains(t, string(errReply), substr)
}

func assertWrongType(t *testing.T, reply resp.Frame) {
	t.Helper()
	assertErrorReply(t, reply, "WRONGTYPE")
}
