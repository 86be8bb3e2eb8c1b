package command

func init() {
	// ========================
	// Connection / Keyspace
	// ========================
	RegisterCommand(&Command{Name: "ping", Arity: -1, Executor: execPing})
	RegisterCommand(&Command{Name: "echo", Arity: 2, Executor: execEcho})

	// DEL key [key ...]
	RegisterCommand(&Command{Name: "del", Arity: -2, Executor: execDel})
	// EXISTS key [key ...]
	RegisterCommand(&Command{Name: "exists", Arity: -2, Executor: execExists})
	// EXPIRE key seconds
	RegisterCommand(&Command{Name: "expire", Arity: 3, Executor: execExpire})
	RegisterCommand(&Command{Name: "ttl", Arity: 2, Executor: execTTL})
	RegisterCommand(&Command{Name: "persist", Arity: 2, Executor: execPersist})
	RegisterCommand(&Command{Name: "dbsize", Arity: 1, Executor: execDBSize})
	// FLUSHDB [ASYNC|SYNC]
	RegisterCommand(&Command{Name: "flushdb", Arity: -1, Executor: execFlushDB})

	// ========================
	// String Commands
	// ========================
	RegisterCommand(&Command{Name: "get", Arity: 2, Executor: execGet})
	// SET key value [EX seconds|PX milliseconds] [NX|XX]
	RegisterCommand(&Command{Name: "set", Arity: -3, Executor: execSet})

	// ========================
	// HashMap Commands
	// ========================
	RegisterCommand(&Command{Name: "hset", Arity: -4, Executor: execHSet})
	RegisterCommand(&Command{Name: "hget", Arity: 3, Executor: execHGet})
	RegisterCommand(&Command{Name: "hmget", Arity: -3, Executor: execHMGet})
	RegisterCommand(&Command{Name: "hgetall", Arity: 2, Executor: execHGetAll})
	RegisterCommand(&Command{Name: "hdel", Arity: -3, Executor: execHDel})

	// ========================
	// Set Commands
	// ========================
	RegisterCommand(&Command{Name: "sadd", Arity: -3, Executor: execSAdd})
	RegisterCommand(&Command{Name: "srem", Arity: -3, Executor: execSRem})
	RegisterCommand(&Command{Name: "sismember", Arity: 3, Executor: execSIsMember})
	RegisterCommand(&Command{Name: "smembers", Arity: 2, Executor: execSMembers})
	RegisterCommand(&Command{Name: "scard", Arity: 2, Executor: execSCard})
}
