package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var GlobalConfig *Config

// Config 全局配置
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Log          LogConfig          `mapstructure:"log"`
	Realtime     RealtimeConfig     `mapstructure:"realtime"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Notification NotificationConfig `mapstructure:"notification"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	CORS         CORSConfig         `mapstructure:"cors"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // mysql, postgres
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"` // 仅 postgres
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level"`         // SQL日志级别: silent/error/warn/info
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWT   JWTConfig   `mapstructure:"jwt"`
	LDAP  LDAPConfig  `mapstructure:"ldap"`
	Local LocalConfig `mapstructure:"local"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	AccessTokenExpire  int    `mapstructure:"access_token_expire"`  // 秒
	RefreshTokenExpire int    `mapstructure:"refresh_token_expire"` // 秒
}

// LDAPConfig LDAP配置
type LDAPConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	Host         string         `mapstructure:"host"`
	Port         int            `mapstructure:"port"`
	UseSSL       bool           `mapstructure:"use_ssl"`
	BindDN       string         `mapstructure:"bind_dn"`
	BindPassword string         `mapstructure:"bind_password"`
	BaseDN       string         `mapstructure:"base_dn"`
	UserFilter   string         `mapstructure:"user_filter"`
	Attributes   LDAPAttributes `mapstructure:"attributes"`
}

// LDAPAttributes LDAP属性映射
type LDAPAttributes struct {
	Username    string `mapstructure:"username"`
	Email       string `mapstructure:"email"`
	DisplayName string `mapstructure:"display_name"`
}

// LocalConfig 本地用户配置
type LocalConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	AllowRegister bool `mapstructure:"allow_register"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`

	// 按组件覆盖级别，如 realtime: debug、gorm: warn
	Components map[string]string `mapstructure:"components"`
}

// RealtimeConfig 实时通道配置
type RealtimeConfig struct {
	HistoryLimit   int           `mapstructure:"history_limit"`    // joinRoom 回放条数上限
	SendBuffer     int           `mapstructure:"send_buffer"`      // 每个连接的发送缓冲
	MaxMessageSize int64         `mapstructure:"max_message_size"` // 入站消息最大字节数
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"` // 为空时不校验 Origin
	Bus            string        `mapstructure:"bus"`             // local, redis
	Channel        string        `mapstructure:"channel"`         // redis 频道名
}

// StorageConfig 文件存储配置
type StorageConfig struct {
	Provider     string           `mapstructure:"provider"` // local, cloudinary
	MaxFileSize  int64            `mapstructure:"max_file_size"`
	AllowedTypes []string         `mapstructure:"allowed_types"` // 扩展名白名单
	Local        LocalStorage     `mapstructure:"local"`
	Cloudinary   CloudinaryConfig `mapstructure:"cloudinary"`
}

// LocalStorage 本地磁盘存储
type LocalStorage struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

// CloudinaryConfig Cloudinary配置
type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

// NotificationConfig 通知外发配置
type NotificationConfig struct {
	Enabled     bool       `mapstructure:"enabled"`      // 是否启用
	Providers   []string   `mapstructure:"providers"`    // log, lark, amqp
	LarkWebhook string     `mapstructure:"lark_webhook"` // Lark Webhook
	AMQP        AMQPConfig `mapstructure:"amqp"`
}

// AMQPConfig RabbitMQ配置
type AMQPConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	ReminderCron          string        `mapstructure:"reminder_cron"`
	ReminderWindow        time.Duration `mapstructure:"reminder_window"`
	CleanupCron           string        `mapstructure:"cleanup_cron"`
	NotificationRetention time.Duration `mapstructure:"notification_retention"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	// .env 可选，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 读取环境变量: AUTH_JWT_SECRET 覆盖 auth.jwt.secret
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("auth.jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("storage.cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	_ = v.BindEnv("storage.cloudinary.api_key", "CLOUDINARY_API_KEY")
	_ = v.BindEnv("storage.cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if config.Auth.JWT.Secret == "" {
		return nil, fmt.Errorf("auth.jwt.secret 未配置")
	}

	// 设置全局配置
	GlobalConfig = config

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "collabboard")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.jwt.access_token_expire", 7*24*3600)
	v.SetDefault("auth.jwt.refresh_token_expire", 30*24*3600)
	v.SetDefault("auth.local.enabled", true)
	v.SetDefault("auth.local.allow_register", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("realtime.history_limit", 50)
	v.SetDefault("realtime.send_buffer", 64)
	v.SetDefault("realtime.max_message_size", 64*1024)
	v.SetDefault("realtime.write_wait", "10s")
	v.SetDefault("realtime.pong_wait", "60s")
	v.SetDefault("realtime.ping_period", "54s")
	v.SetDefault("realtime.bus", "local")
	v.SetDefault("realtime.channel", "collabboard:rooms")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.max_file_size", 10*1024*1024)
	v.SetDefault("storage.allowed_types", []string{"jpeg", "jpg", "png", "gif", "pdf", "doc", "docx", "txt", "zip", "rar"})
	v.SetDefault("storage.local.dir", "./uploads")
	v.SetDefault("storage.local.base_url", "/uploads")
	v.SetDefault("storage.cloudinary.folder", "collabboard")

	v.SetDefault("notification.providers", []string{"log"})
	v.SetDefault("notification.amqp.exchange", "collabboard.notifications")
	v.SetDefault("notification.amqp.routing_key", "notification.created")

	v.SetDefault("scheduler.reminder_cron", "0 0 9 * * *")
	v.SetDefault("scheduler.reminder_window", "72h")
	v.SetDefault("scheduler.cleanup_cron", "0 30 3 * * *")
	v.SetDefault("scheduler.notification_retention", "720h")
}

// GetDSN 获取数据库DSN
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "postgres" {
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host,
			c.Port,
			c.Username,
			c.Password,
			c.Database,
			sslMode,
		)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}
