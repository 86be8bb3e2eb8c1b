package backend

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"simpleredis/internal/command"
	"simpleredis/internal/common"
	"simpleredis/internal/logger"
	"simpleredis/internal/resp"
	"simpleredis/internal/types"
	"simpleredis/pkg/datastruct"
)

const (
	defaultExpireInterval = time.Second
	defaultExpireSample   = 20 // Redis 默认每轮抽样 20 个
)

// UnknownCommand 是未注册命令在 ExecHook 中使用的名称
const UnknownCommand = "unknown"

// ExecHook 每条命令执行后回调，name 为小写命令名
type ExecHook func(name string, reply resp.Frame)

type Options struct {
	Shards         int
	ExpireInterval time.Duration
	ExpireSample   int
	OnExec         ExecHook
}

// Backend 进程内共享的存储，所有连接通过 Exec 访问
type Backend struct {
	db   *DB
	opts Options

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func New(opts Options) *Backend {
	if opts.Shards <= 0 {
		opts.Shards = datastruct.DefaultShardCount
	}
	if opts.ExpireInterval <= 0 {
		opts.ExpireInterval = defaultExpireInterval
	}
	if opts.ExpireSample <= 0 {
		opts.ExpireSample = defaultExpireSample
	}
	return &Backend{
		db:   MakeDB(opts.Shards),
		opts: opts,
	}
}

// DB 暴露底层键空间
func (b *Backend) DB() types.Database {
	return b.db
}

// Start 启动定期过期清理，重复调用无效
func (b *Backend) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.stopped = make(chan struct{})
	go b.expireLoop(ctx, b.stopped)
}

func (b *Backend) expireLoop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(b.opts.ExpireInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.db.activeExpire(b.opts.ExpireSample); n > 0 {
				logger.Debug("active expire", zap.Int("expired", n))
			}
		}
	}
}

// Close 停止过期清理并等待其退出
func (b *Backend) Close() {
	b.mu.Lock()
	cancel, stopped := b.cancel, b.stopped
	b.cancel, b.stopped = nil, nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		<-stopped
	}
}

// Exec 执行一条请求帧，命令层的失败都以错误帧返回
func (b *Backend) Exec(req resp.Frame) resp.Frame {
	cmdLine, ok := common.ToCmdLine(req)
	if !ok {
		return resp.MakeErrReply("ERR invalid request")
	}
	line := types.CmdLine(cmdLine)

	cmd, ok := command.GetCmd(line.Name())
	if !ok {
		reply := resp.MakeErrReply("ERR unknown command '" + string(cmdLine[0]) + "'")
		b.observe(UnknownCommand, reply)
		return reply
	}

	// 校验参数个数 (Arity Check)
	if !command.ValidateArity(cmd.Arity, cmdLine) {
		reply := resp.MakeArgNumErrReply(cmd.Name)
		b.observe(cmd.Name, reply)
		return reply
	}

	common.LogBytesArr("exec", cmdLine)
	reply := cmd.Executor(b.db, line.Args())
	b.observe(cmd.Name, reply)
	return reply
}

func (b *Backend) observe(name string, reply resp.Frame) {
	if b.opts.OnExec != nil {
		b.opts.OnExec(name, reply)
	}
}
