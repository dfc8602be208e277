package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"helpdesk/internal/query"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	str2duration "github.com/xhit/go-str2duration/v2"
)

type Env struct {
	AppAddr string
	GinMode string
	AppEnv  string

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBDSN         string
	DBAutoMigrate bool

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration

	PaginationLimit    int
	PaginationMaxLimit int
	SortBy             string
	OrderBy            string
	DefaultLanguage    string

	CORSAllowedOrigins []string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ResetCodeTTL  time.Duration

	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string

	PasswordMinScore int
	MaxOpenTickets   int
}

// IsProduction reports whether secure cookies and release defaults apply.
func (e Env) IsProduction() bool {
	return strings.EqualFold(e.AppEnv, "production")
}

// QueryDefaults are the list defaults applied by the filter middleware.
func (e Env) QueryDefaults() query.Defaults {
	return query.Defaults{
		Limit:    e.PaginationLimit,
		Offset:   0,
		MaxLimit: e.PaginationMaxLimit,
		SortBy:   e.SortBy,
		OrderBy:  e.OrderBy,
		Language: e.DefaultLanguage,
	}
}

// DSN returns the connection string. A DB_DSN override keeps its own settings
// but always gets parseTime, UTC and clientFoundRows, which scanning and
// UpdateIf rely on.
func (e Env) DSN() (string, error) {
	if e.DBDSN != "" {
		cfg, err := mysql.ParseDSN(e.DBDSN)
		if err != nil {
			return "", fmt.Errorf("parse DB_DSN: %w", err)
		}
		cfg.ParseTime = true
		cfg.ClientFoundRows = true
		cfg.Loc = time.UTC
		return cfg.FormatDSN(), nil
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s&clientFoundRows=true",
		e.DBUser, e.DBPassword, e.DBHost, e.DBPort, e.DBName), nil
}

// LoadEnv reads configuration from the process environment, after loading .env when present.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[CONFIG] action=load_dotenv msg=%v", err)
	}

	return Env{
		AppAddr: str("APP_ADDR", ":8080"),
		GinMode: str("GIN_MODE", ""),
		AppEnv:  str("APP_ENV", "development"),

		DBHost:        str("DB_HOST", "127.0.0.1"),
		DBPort:        str("DB_PORT", "3306"),
		DBUser:        str("DB_USER", "root"),
		DBPassword:    str("DB_PASSWORD", ""),
		DBName:        str("DB_NAME", "helpdesk"),
		DBDSN:         str("DB_DSN", ""),
		DBAutoMigrate: boolean("DB_AUTO_MIGRATE", true),

		JWTAccessSecret:  str("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret: str("JWT_REFRESH_SECRET", ""),
		JWTAccessTTL:     duration("JWT_ACCESS_EXPIRATION", 15*time.Minute),
		JWTRefreshTTL:    duration("JWT_REFRESH_EXPIRATION", 7*24*time.Hour),

		PaginationLimit:    integer("PAGINATION_LIMIT", 5),
		PaginationMaxLimit: integer("PAGINATION_MAX_LIMIT", 100),
		SortBy:             str("SORT_BY", "created_at"),
		OrderBy:            strings.ToUpper(str("ORDER_BY", "DESC")),
		DefaultLanguage:    strings.ToUpper(str("DEFAULT_LANGUAGE", "EN")),

		CORSAllowedOrigins: list("CORS_ALLOWED_ORIGINS"),

		SMTPHost:     str("SMTP_HOST", ""),
		SMTPPort:     integer("SMTP_PORT", 587),
		SMTPUsername: str("SMTP_USERNAME", ""),
		SMTPPassword: str("SMTP_PASSWORD", ""),
		MailFrom:     str("MAIL_FROM", "no-reply@helpdesk.local"),

		RedisAddr:     str("REDIS_ADDR", ""),
		RedisPassword: str("REDIS_PASSWORD", ""),
		RedisDB:       integer("REDIS_DB", 0),
		ResetCodeTTL:  duration("RESET_CODE_TTL", 15*time.Minute),

		AdminEmail:     str("ADMIN_EMAIL", ""),
		AdminPassword:  str("ADMIN_PASSWORD", ""),
		AdminFirstName: str("ADMIN_FIRST_NAME", "Admin"),
		AdminLastName:  str("ADMIN_LAST_NAME", "Helpdesk"),

		PasswordMinScore: integer("PASSWORD_MIN_SCORE", 1),
		MaxOpenTickets:   integer("MAX_OPEN_TICKETS", 5),
	}
}

func str(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[CONFIG] action=parse key=%s msg=invalid integer %q, using %d", key, v, def)
		return def
	}
	return n
}

func boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[CONFIG] action=parse key=%s msg=invalid bool %q, using %t", key, v, def)
		return def
	}
	return b
}

// duration accepts Go durations plus day and week units ("7d", "1w").
func duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := str2duration.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[CONFIG] action=parse key=%s msg=invalid duration %q, using %s", key, v, def)
		return def
	}
	return d
}

func list(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
