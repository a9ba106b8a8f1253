package config

import (
	"os"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/Skotchmaster/aquashop/pkg/config"
)

type Config struct {
	ServerPort  string
	DatabaseURL string
	DBDriver    string
	JWTSecret   []byte
	LogLevel    string

	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string

	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TotalTolerance        decimal.Decimal
	TaxRate               decimal.Decimal

	KafkaBrokers []string

	ESURL        string
	ESUser       string
	ESPassword   string
	ESOrderIndex string

	CSRFEnabled bool

	StoreName    string
	StoreAddress string
	StoreGSTIN   string
}

func Load() (*Config, error) {
	pkgconfig.LoadDotEnv()

	cfg := &Config{
		ServerPort:  pkgconfig.EnvDefault("SERVER_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBDriver:    pkgconfig.EnvDefault("DB_DRIVER", "pgx"),
		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		LogLevel:    pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		Currency:          pkgconfig.EnvDefault("CURRENCY", "INR"),

		FreeShippingThreshold: pkgconfig.EnvDecimalDefault("FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(2000)),
		ShippingFee:           pkgconfig.EnvDecimalDefault("SHIPPING_FEE", decimal.NewFromInt(99)),
		TotalTolerance:        pkgconfig.EnvDecimalDefault("TOTAL_TOLERANCE", decimal.RequireFromString("0.01")),
		TaxRate:               pkgconfig.EnvDecimalDefault("TAX_RATE", decimal.Zero),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:        os.Getenv("ES_URL"),
		ESUser:       os.Getenv("ES_USER"),
		ESPassword:   os.Getenv("ES_PASSWORD"),
		ESOrderIndex: pkgconfig.EnvDefault("ES_ORDER_INDEX", "orders"),

		CSRFEnabled: pkgconfig.EnvBoolDefault("CSRF_ENABLED", false),

		StoreName:    pkgconfig.EnvDefault("STORE_NAME", "Aquashop"),
		StoreAddress: os.Getenv("STORE_ADDRESS"),
		StoreGSTIN:   os.Getenv("STORE_GSTIN"),
	}

	var missing pkgconfig.Missing
	missing.NonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	missing.NonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	missing.NonEmpty(cfg.RazorpayKeyID, "RAZORPAY_KEY_ID")
	missing.NonEmpty(cfg.RazorpayKeySecret, "RAZORPAY_KEY_SECRET")
	if err := missing.Err(); err != nil {
		return nil, err
	}

	return cfg, nil
}
