package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gomovies/internal/domain"
	"gomovies/internal/pkg/database"
)

// Config armazena todas as configurações do aplicativo GoMovies.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados
	DBDriver    string
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis). Vazio usa o cache em memória do processo.
	RedisAddr string
	CacheTTL  time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	JWTIssuer    string
	JWTAudience  string
	TokenExpiry  time.Duration
	APIKeys      []string

	// Rate Limiting (0 desliga)
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// HTTP
	CORSAllowedOrigins []string

	// Regras de domínio
	RatingEligibility domain.RatingEligibility
}

// source resolve uma chave: variável de ambiente primeiro, depois o arquivo YAML.
type source struct {
	file map[string]interface{}
	errs []error
}

// LoadConfig carrega o arquivo YAML opcional (CONFIG_PATH, padrão config.yaml),
// aplica as variáveis de ambiente por cima e valida o resultado.
func LoadConfig() (*Config, error) {
	src := &source{}
	if err := src.loadFile(getEnv("CONFIG_PATH", "config.yaml")); err != nil {
		return nil, err
	}

	cfg := &Config{
		// 1. Geral
		Port:        src.str("PORT", "8080"),
		Environment: src.str("ENV", "development"),
		LogLevel:    src.str("LOG_LEVEL", "info"),

		// 2. Banco de Dados
		DBDriver:    strings.ToLower(src.str("DB_DRIVER", database.DriverPostgres)),
		DatabaseURL: src.str("DATABASE_URL", ""),
		DBTimeout:   time.Duration(src.integer("DB_TIMEOUT_SEC", 5)) * time.Second,

		// 3. Cache
		RedisAddr: src.str("REDIS_ADDR", ""),
		CacheTTL:  time.Duration(src.integer("CACHE_TTL_SEC", 300)) * time.Second,

		// 4. Segurança
		JWTSecretKey: src.str("JWT_SECRET_KEY", ""),
		JWTIssuer:    src.str("JWT_ISSUER", "gomovies"),
		JWTAudience:  src.str("JWT_AUDIENCE", "gomovies-api"),
		TokenExpiry:  time.Duration(src.integer("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		APIKeys:      src.list("API_KEYS"),

		// 5. Rate Limiting
		RateLimitMaxRequests: src.integer("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      time.Duration(src.integer("RATE_LIMIT_PERIOD_MIN", 1)) * time.Minute,

		// 6. HTTP
		CORSAllowedOrigins: src.list("CORS_ALLOWED_ORIGINS"),

		// 7. Domínio
		RatingEligibility: domain.RatingEligibility(strings.ToLower(src.str("RATING_ELIGIBILITY", string(domain.EligibleUnpublished)))),
	}

	if err := cfg.validate(src.errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction indica se o ambiente é produção.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) validate(errs []error) error {
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL deve ser definida"))
	}
	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY deve ser definida"))
	}
	if c.DBDriver != database.DriverPostgres && c.DBDriver != database.DriverSQLite {
		errs = append(errs, fmt.Errorf("DB_DRIVER inválido %q (use postgres ou sqlite)", c.DBDriver))
	}
	if !c.RatingEligibility.Valid() {
		errs = append(errs, fmt.Errorf("RATING_ELIGIBILITY inválido %q (use unpublished ou published)", c.RatingEligibility))
	}
	if c.DBTimeout <= 0 {
		errs = append(errs, errors.New("DB_TIMEOUT_SEC deve ser positivo"))
	}
	if c.TokenExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_HOURS deve ser positivo"))
	}
	if c.RateLimitMaxRequests < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_REQUESTS não pode ser negativo"))
	}
	if c.RateLimitMaxRequests > 0 && c.RateLimitPeriod <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PERIOD_MIN deve ser positivo"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("erro de configuração: %w", errors.Join(errs...))
	}
	return nil
}

// loadFile lê o YAML; arquivo ausente não é erro.
func (s *source) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("falha ao ler %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &s.file); err != nil {
		return fmt.Errorf("falha ao interpretar %s: %w", path, err)
	}
	return nil
}

// lookup procura a chave no ambiente e, em seguida, no YAML (em minúsculas: DB_DRIVER -> db_driver).
func (s *source) lookup(key string) (interface{}, bool) {
	if value, exists := os.LookupEnv(key); exists {
		return value, true
	}
	value, exists := s.file[strings.ToLower(key)]
	return value, exists && value != nil
}

func (s *source) str(key, defaultValue string) string {
	value, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func (s *source) integer(key string, defaultValue int) int {
	valueStr := s.str(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s ('%s') não é um número inteiro válido", key, valueStr))
		return defaultValue
	}
	return value
}

// list aceita uma string separada por vírgulas ou, no YAML, uma sequência.
func (s *source) list(key string) []string {
	value, ok := s.lookup(key)
	if !ok {
		return nil
	}

	var parts []string
	switch v := value.(type) {
	case []interface{}:
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
	default:
		parts = strings.Split(fmt.Sprint(v), ",")
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
