package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Modos del motor de stock.
const (
	StockModeUnguarded = "unguarded" // lectura + escritura, sin bloqueo (comportamiento histórico)
	StockModeGuarded   = "guarded"   // UPDATE condicional atómico
)

// Config agrupa la configuración de los servicios (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	Redis    RedisConfig
	Services ServicesConfig
	Cache    CacheConfig
	Stock    StockConfig
	Seed     SeedConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de los tokens de acceso y de refresco.
type JWTConfig struct {
	AccessSecret      string
	RefreshSecret     string
	AccessExpiration  int // minutos
	RefreshExpiration int // minutos
	Issuer            string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión a Redis y TTL de la caché de lecturas.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration
}

// Addr devuelve host:port de Redis.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServicesConfig URLs base de los otros servicios y timeouts de las llamadas salientes.
// CascadeTimeout cubre una cascada completa en órdenes, que libera stock orden por orden.
type ServicesConfig struct {
	IdentityURL    string
	CatalogURL     string
	OrdersURL      string
	Timeout        time.Duration
	CascadeTimeout time.Duration
}

// CacheConfig opciones del read-through.
type CacheConfig struct {
	SingleFlight bool
}

// SeedConfig administrador inicial que crea cmd/seed.
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// StockConfig selecciona la primitiva de mutación de stock.
type StockConfig struct {
	Mode string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_ACCESS_SECRET, REDIS_HOST, etc.
// defaultName y defaultPort permiten que cada binario tenga sus propios valores por defecto.
func Load(defaultName string, defaultPort int) (*Config, error) {
	cfg := read(defaultName, defaultPort)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSeed lee la misma configuración que Load sin exigir secretos JWT:
// el seed sólo habla con PostgreSQL y Redis.
func LoadSeed(defaultName string) *Config {
	return read(defaultName, 0)
}

func read(defaultName string, defaultPort int) *Config {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", defaultName),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", strings.ReplaceAll(defaultName, "-", "_")),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			AccessSecret:      getString(v, "JWT_ACCESS_SECRET", ""),
			RefreshSecret:     getString(v, "JWT_REFRESH_SECRET", ""),
			AccessExpiration:  getInt(v, "JWT_ACCESS_EXPIRATION_MINUTES", 15),
			RefreshExpiration: getInt(v, "JWT_REFRESH_EXPIRATION_MINUTES", 60*24*7),
			Issuer:            getString(v, "JWT_ISSUER", "tienda-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", defaultPort),
		},
		Redis: RedisConfig{
			Host:     getString(v, "REDIS_HOST", "localhost"),
			Port:     getInt(v, "REDIS_PORT", 6379),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			PoolSize: getInt(v, "REDIS_POOL_SIZE", 20),
			TTL:      time.Duration(getInt(v, "CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Services: ServicesConfig{
			IdentityURL:    strings.TrimRight(getString(v, "IDENTITY_SERVICE_URL", "http://localhost:3001"), "/"),
			CatalogURL:     strings.TrimRight(getString(v, "CATALOG_SERVICE_URL", "http://localhost:3002"), "/"),
			OrdersURL:      strings.TrimRight(getString(v, "ORDERS_SERVICE_URL", "http://localhost:3003"), "/"),
			Timeout:        time.Duration(getInt(v, "UPSTREAM_TIMEOUT_SECONDS", 5)) * time.Second,
			CascadeTimeout: time.Duration(getInt(v, "CASCADE_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Cache: CacheConfig{
			SingleFlight: getBool(v, "CACHE_SINGLE_FLIGHT", false),
		},
		Stock: StockConfig{
			Mode: getString(v, "STOCK_MUTATION_MODE", StockModeUnguarded),
		},
		Seed: SeedConfig{
			AdminName:     getString(v, "SEED_ADMIN_NAME", "admin"),
			AdminEmail:    strings.ToLower(getString(v, "SEED_ADMIN_EMAIL", "")),
			AdminPassword: getString(v, "SEED_ADMIN_PASSWORD", ""),
		},
	}
	return cfg
}

// Validate revisa los valores que no tienen un default razonable.
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("config: JWT_ACCESS_SECRET es requerido")
	}
	switch c.Stock.Mode {
	case StockModeUnguarded, StockModeGuarded:
	default:
		return fmt.Errorf("config: STOCK_MUTATION_MODE inválido %q", c.Stock.Mode)
	}
	if c.Services.Timeout <= 0 {
		return fmt.Errorf("config: UPSTREAM_TIMEOUT_SECONDS debe ser mayor que 0")
	}
	if c.Services.CascadeTimeout < c.Services.Timeout {
		return fmt.Errorf("config: CASCADE_TIMEOUT_SECONDS no puede ser menor que UPSTREAM_TIMEOUT_SECONDS")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
