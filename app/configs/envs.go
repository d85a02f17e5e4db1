package configs

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type ENV struct {
	DBHost            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBPort            string
	Port              string
	AppURL            string
	AppEnv            string
	AppTimezone       string
	AppAuthKey        string
	AppEncKey         string
	SessionDir        string
	UploadDir         string
	UploadBaseURL     string
	CODThreshold      decimal.Decimal
	PaymentProvider   string
	MidtransServerKey string
	MidtransClientKey string
	StripeSecretKey   string
	KafkaBrokers      []string
	KafkaOrderTopic   string
	EmailHost         string
	EmailPort         string
	EmailUsername     string
	EmailPassword     string
	EmailFrom         string
}

func LoadEnv() ENV {

	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: No .env file found ")
	}

	return ENV{
		DBHost:            getEnvOrDefault("DB_HOST", "127.0.0.1"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            getEnvOrDefault("DB_NAME", "storefront"),
		DBPort:            getEnvOrDefault("DB_PORT", "3306"),
		Port:              getEnvOrDefault("APP_PORT", ":8080"),
		AppURL:            getEnvOrDefault("APP_URL", "http://localhost:8080"),
		AppEnv:            getEnvOrDefault("APP_ENV", "development"),
		AppTimezone:       getEnvOrDefault("APP_TIMEZONE", "Local"),
		AppAuthKey:        os.Getenv("APP_AUTH_KEY"),
		AppEncKey:         os.Getenv("APP_ENC_KEY"),
		SessionDir:        getEnvOrDefault("SESSION_DIR", os.TempDir()),
		UploadDir:         getEnvOrDefault("UPLOAD_DIR", "./public/uploads"),
		UploadBaseURL:     getEnvOrDefault("UPLOAD_BASE_URL", "/uploads"),
		CODThreshold:      getDecimalEnv("COD_THRESHOLD", decimal.NewFromInt(400)),
		PaymentProvider:   strings.ToLower(getEnvOrDefault("PAYMENT_PROVIDER", "midtrans")),
		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransClientKey: os.Getenv("MIDTRANS_CLIENT_KEY"),
		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
		KafkaBrokers:      getListEnv("KAFKA_BROKERS"),
		KafkaOrderTopic:   getEnvOrDefault("KAFKA_ORDER_TOPIC", "storefront.order-created"),
		EmailHost:         os.Getenv("EMAIL_HOST"),
		EmailPort:         getEnvOrDefault("EMAIL_PORT", "587"),
		EmailUsername:     os.Getenv("EMAIL_USERNAME"),
		EmailPassword:     os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:         os.Getenv("EMAIL_USERNAME"),
	}

}

func (e ENV) IsProduction() bool {
	return e.AppEnv == "production"
}

// Location resolves APP_TIMEZONE, falling back to the server's local zone.
func (e ENV) Location() *time.Location {
	if e.AppTimezone == "" || e.AppTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(e.AppTimezone)
	if err != nil {
		log.Printf("configs: unknown APP_TIMEZONE %q, using local time: %v", e.AppTimezone, err)
		return time.Local
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDecimalEnv(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil && !parsed.IsNegative() {
			return parsed
		}
		log.Printf("configs: invalid %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
