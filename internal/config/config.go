package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port                   string
	AllowedOrigin          string
	DatabaseURL            string
	DatabaseAutoMigrate    bool
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	AuthSecret             string
	AccessTokenTTLMinutes  int
	CatalogCacheTTLSeconds int
	StoreTimeoutSeconds    int
	SalesTaxRate           decimal.Decimal
}

var defaultSalesTaxRate = decimal.RequireFromString("0.06")

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	autoMigrate, _ := strconv.ParseBool(getEnv("DATABASE_AUTO_MIGRATE", "false"))

	taxRate, err := decimal.NewFromString(getEnv("SALES_TAX_RATE", "0.06"))
	if err != nil || taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		log.Printf("[config] WARN: invalid SALES_TAX_RATE %q, using %s", os.Getenv("SALES_TAX_RATE"), defaultSalesTaxRate)
		taxRate = defaultSalesTaxRate
	}

	cfg := Config{
		Port:                   getEnv("PORT", "8080"),
		AllowedOrigin:          getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DatabaseAutoMigrate:    autoMigrate,
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                redisDB,
		AuthSecret:             strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes:  getPositiveInt("ACCESS_TOKEN_TTL_MINUTES", 480),
		CatalogCacheTTLSeconds: getPositiveInt("CATALOG_CACHE_TTL_SECONDS", 30),
		StoreTimeoutSeconds:    getPositiveInt("STORE_TIMEOUT_SECONDS", 5),
		SalesTaxRate:           taxRate,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getPositiveInt(key string, fallback int) int {
	val, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || val < 1 {
		return fallback
	}
	return val
}
