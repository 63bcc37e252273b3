package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置，与其他服务保持结构一致，便于共享启动逻辑。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// DispatchConfig 分发引擎配置。
type DispatchConfig struct {
	// BatchSize 每次调度 tick 最多选取的事件数。
	BatchSize int `mapstructure:"batch_size"`
	// TickInterval 调度器心跳周期。
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// LockName 跨实例互斥锁名，整个部署域内保持一致。
	LockName string `mapstructure:"lock_name"`
	// LockProvider 锁实现，mysql 或 redis。
	LockProvider string `mapstructure:"lock_provider"`
	// LockTTL redis 锁的过期兜底时间。
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// PoolSize 工作池大小。
	PoolSize int `mapstructure:"pool_size"`
	// QueueCapacity 工作池等待队列容量。
	QueueCapacity int `mapstructure:"queue_capacity"`
	// SaturationPolicy 队列饱和策略：reject、block 或 caller_runs。
	SaturationPolicy string `mapstructure:"saturation_policy"`
	// DrainOnShutdown 关停时是否先执行完队列中的任务。
	DrainOnShutdown bool `mapstructure:"drain_on_shutdown"`
	// DrainTimeout 关停时等待工作池的最长时间。
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`
	// StaleRequeueAfter PROCESSING 停留超过该时长后重新入队，0 表示关闭。
	StaleRequeueAfter time.Duration `mapstructure:"stale_requeue_after"`
}

// Load 加载配置文件。
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 关停默认排空队列，避免静默丢弃已选取的事件
	viper.SetDefault("dispatch.drain_on_shutdown", true)

	// 设置环境变量前缀
	viper.SetEnvPrefix("NOTIF_DISPATCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	normalize(&cfg)
	return &cfg, nil
}

// normalize 补全默认值
func normalize(c *Config) {
	d := &c.Dispatch
	if d.BatchSize <= 0 {
		d.BatchSize = 50
	}
	if d.TickInterval <= 0 {
		d.TickInterval = 30 * time.Second
	}
	if d.LockName == "" {
		d.LockName = "notification:dispatch"
	}
	if d.LockProvider == "" {
		d.LockProvider = "mysql"
	}
	if d.LockTTL <= 0 {
		d.LockTTL = 5 * time.Minute
	}
	if d.PoolSize <= 0 {
		d.PoolSize = 4
	}
	if d.QueueCapacity <= 0 {
		d.QueueCapacity = 200
	}
	if d.SaturationPolicy == "" {
		d.SaturationPolicy = "caller_runs"
	}
	if d.DrainTimeout <= 0 {
		d.DrainTimeout = 30 * time.Second
	}
	if d.StaleRequeueAfter < 0 {
		d.StaleRequeueAfter = 0
	}
}

// GetDSN 构建 MySQL DSN。
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// GetRedisAddr 获取 Redis 地址。
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
