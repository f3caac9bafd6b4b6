package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	StoragePostgres = "pg"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Storage               string        `yaml:"storage" validate:"required,oneof=pg mongo memory"`
	Http                  Http          `yaml:"http"`
	Pg                    Pg            `yaml:"pg"`
	Mongo                 Mongo         `yaml:"mongo"`
	Redis                 Redis         `yaml:"redis"`
	JwtTTL                time.Duration `yaml:"jwt_ttl" validate:"required"`
	PostsPerPage          int           `yaml:"posts_per_page" validate:"required,min=1"`
	MaxPostsPerPage       int           `yaml:"max_posts_per_page" validate:"required,gtefield=PostsPerPage"`
	UploadsDir            string        `yaml:"uploads_dir" validate:"required"`
	MaxAttachmentSize     int64         `yaml:"max_attachment_size" validate:"required,min=1"`
	// Unreferenced uploads older than UploadsGCMinAge are removed every UploadsGCInterval.
	UploadsGCInterval time.Duration `yaml:"uploads_gc_interval"`
	UploadsGCMinAge   time.Duration `yaml:"uploads_gc_min_age"`
	AllowedImageMimeTypes []string      `yaml:"allowed_image_mime_types" validate:"required,min=1"`
	CorsOrigins           []string      `yaml:"cors_origins"`
	LogLevel              string        `yaml:"log_level"`
	LogJSON               bool          `yaml:"log_json"`
	// Requests per second allowed for auth endpoints and per-user writes.
	AuthRateLimit  float64 `yaml:"auth_rate_limit"`
	WriteRateLimit float64 `yaml:"write_rate_limit"`
}

type Http struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Secure          bool          `yaml:"secure"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Mongo struct {
	Database string `yaml:"database"`
}

// Redis is optional; an empty Addr disables the category cache.
type Redis struct {
	Addr        string        `yaml:"addr"`
	CategoryTTL time.Duration `yaml:"category_ttl"`
}

type Private struct {
	JwtKey        string `yaml:"jwt_key" validate:"required,min=16"`
	PgPassword    string `yaml:"pg_password"`
	MongoURI      string `yaml:"mongo_uri"`
	RedisPassword string `yaml:"redis_password"`
}

func (s *Config) JwtKey() string {
	return s.private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

func (s *Config) MongoURI() string {
	return s.private.MongoURI
}

func (s *Config) RedisPassword() string {
	return s.private.RedisPassword
}

// PgPassword prefers the private file over the public one.
func (s *Config) PgPassword() string {
	if s.private.PgPassword != "" {
		return s.private.PgPassword
	}
	return s.Public.Pg.Password
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

// overrideFromEnv lets deployments keep secrets out of private.yaml.
func (p *Private) overrideFromEnv() {
	for env, dst := range map[string]*string{
		"POSTBOARD_JWT_KEY":        &p.JwtKey,
		"POSTBOARD_PG_PASSWORD":    &p.PgPassword,
		"POSTBOARD_MONGO_URI":      &p.MongoURI,
		"POSTBOARD_REDIS_PASSWORD": &p.RedisPassword,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
}

func (p *Public) setDefaults() {
	if p.Http.ReadTimeout == 0 {
		p.Http.ReadTimeout = 15 * time.Second
	}
	if p.Http.WriteTimeout == 0 {
		p.Http.WriteTimeout = 15 * time.Second
	}
	if p.Http.ShutdownTimeout == 0 {
		p.Http.ShutdownTimeout = 10 * time.Second
	}
	if p.Redis.CategoryTTL == 0 {
		p.Redis.CategoryTTL = 5 * time.Minute
	}
	if p.AuthRateLimit == 0 {
		p.AuthRateLimit = 1
	}
	if p.WriteRateLimit == 0 {
		p.WriteRateLimit = 2
	}
	if p.UploadsGCInterval == 0 {
		p.UploadsGCInterval = time.Hour
	}
	if p.UploadsGCMinAge == 0 {
		p.UploadsGCMinAge = 15 * time.Minute
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	// private.yaml is optional when every secret comes from the environment
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &private)
	}
	private.overrideFromEnv()

	cfg, err := New(public, private)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// New applies defaults and validates. Used by MustLoad and by callers that
// assemble a config in code.
func New(public Public, private Private) (*Config, error) {
	public.setDefaults()
	cfg := &Config{public, private}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Config) validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(s.Public); err != nil {
		return fmt.Errorf("invalid public config: %w", err)
	}
	if err := v.Struct(s.private); err != nil {
		return fmt.Errorf("invalid private config: %w", err)
	}
	switch s.Public.Storage {
	case StoragePostgres:
		if s.Public.Pg.Host == "" || s.Public.Pg.Dbname == "" {
			return fmt.Errorf("pg storage requires pg.host and pg.dbname")
		}
	case StorageMongo:
		if s.private.MongoURI == "" || s.Public.Mongo.Database == "" {
			return fmt.Errorf("mongo storage requires mongo_uri and mongo.database")
		}
	}
	for _, m := range s.Public.AllowedImageMimeTypes {
		if !strings.HasPrefix(m, "image/") {
			return fmt.Errorf("unsupported attachment mime type %q", m)
		}
	}
	return nil
}
