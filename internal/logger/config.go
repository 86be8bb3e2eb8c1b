package logger

type Config struct {
	Level      string
	FileName   string // 为空时输出到 stdout
	MaxSize    int
	MaxAge     int
	MaxBackups int
	Compress   bool
}

func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		MaxSize:    100,
		MaxAge:     30,
		MaxBackups: 10,
		Compress:   true,
	}
}
