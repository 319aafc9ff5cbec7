package conf

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`

	Redis Redis `mapstructure:"redis"`
	Mongo Mongo `mapstructure:"mongo"`
	MySQL MySQL `mapstructure:"mysql"`
	Web   Web   `mapstructure:"web"`
}

type Redis struct {
	Driver   string `mapstructure:"driver"` // goredis or redigo
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type Mongo struct {
	URI string `mapstructure:"uri"`
}

type MySQL struct {
	DSN string `mapstructure:"dsn"`
}

type Web struct {
	ServeIP  string        `mapstructure:"serve_ip"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // cached:{url} 的过期时间
}

const EnvPrefix = "drills"

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("redis.driver", "goredis")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mysql.dsn", "root:@tcp(localhost:3306)/holberton?parseTime=true&loc=Local")
	v.SetDefault("web.serve_ip", "127.0.0.1:8081")
	v.SetDefault("web.cache_ttl", 10*time.Second)
}

// Load reads defaults, then the optional file at path, then DRILLS_* env vars.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load over a caller owned viper, so flags bound to v take part too.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithMessagef(err, "read config %s", path)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.WithMessage(err, "decode config")
	}
	if err := Check(config); err != nil {
		return nil, err
	}
	return config, nil
}

func Check(c *Config) error {
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is empty")
	}
	switch c.Redis.Driver {
	case "goredis", "redigo":
	default:
		return errors.Errorf("redis.driver %q is not one of goredis, redigo", c.Redis.Driver)
	}
	if c.Web.CacheTTL <= 0 {
		return errors.New("web.cache_ttl must be positive")
	}
	return nil
}
