package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/pocompose/backend-go/internal/importer"
)

type Config struct {
	Server ServerConfig
	Order  OrderConfig
	Import ImportConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type OrderConfig struct {
	// DefaultTaxRate is the percent applied when an import row leaves the
	// tax rate blank or unparseable.
	DefaultTaxRate    decimal.Decimal
	DefaultUOM        string
	DefaultCurrency   string
	ReferenceCurrency string
}

type ImportConfig struct {
	MaxUploadBytes int64
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("ORDER_DEFAULT_TAX_RATE", "13")
		viper.SetDefault("ORDER_DEFAULT_UOM", "PCS")
		viper.SetDefault("ORDER_DEFAULT_CURRENCY", "USD")
		viper.SetDefault("ORDER_REFERENCE_CURRENCY", "USD")
		viper.SetDefault("IMPORT_MAX_UPLOAD_BYTES", 10<<20)

		// Read from environment variables
		viper.AutomaticEnv()

		taxRate, err := decimal.NewFromString(viper.GetString("ORDER_DEFAULT_TAX_RATE"))
		if err != nil {
			taxRate = decimal.NewFromInt(13)
		}

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Order: OrderConfig{
				DefaultTaxRate:    taxRate,
				DefaultUOM:        viper.GetString("ORDER_DEFAULT_UOM"),
				DefaultCurrency:   viper.GetString("ORDER_DEFAULT_CURRENCY"),
				ReferenceCurrency: viper.GetString("ORDER_REFERENCE_CURRENCY"),
			},
			Import: ImportConfig{
				MaxUploadBytes: viper.GetInt64("IMPORT_MAX_UPLOAD_BYTES"),
			},
		}
	})

	return instance
}

// ImportDefaults translates the order config into the import pipeline's
// fill-in values.
func (c *Config) ImportDefaults() importer.Defaults {
	return importer.Defaults{
		UOM:      c.Order.DefaultUOM,
		Currency: c.Order.DefaultCurrency,
		TaxRate:  c.Order.DefaultTaxRate,
	}
}
