package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port int

	AppwriteEndpoint      string
	AppwriteProject       string
	AppwriteKey           string
	AppwriteDatabaseID    string
	LeadsCollectionID     string
	AcademiesCollectionID string

	AllowOrigins []string

	RecentWindow time.Duration

	RabbitUser string
	RabbitPass string
	RabbitHost string
	RabbitPort string

	MailHost     string
	MailPort     int
	MailUser     string
	MailPassword string
	MailFrom     string

	WhatsAppToken   string
	WhatsAppPhoneID string
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.AppwriteEndpoint = getEnv("APPWRITE_ENDPOINT", "https://cloud.appwrite.io/v1")

	cfg.AppwriteProject = getEnv("APPWRITE_PROJECT_ID", "")
	if cfg.AppwriteProject == "" {
		return nil, errors.New("APPWRITE_PROJECT_ID obrigatório")
	}

	cfg.AppwriteKey = getEnv("APPWRITE_API_KEY", "")
	if cfg.AppwriteKey == "" {
		return nil, errors.New("APPWRITE_API_KEY obrigatório")
	}

	cfg.AppwriteDatabaseID = getEnv("APPWRITE_DATABASE_ID", "")
	if cfg.AppwriteDatabaseID == "" {
		return nil, errors.New("APPWRITE_DATABASE_ID obrigatório")
	}

	cfg.LeadsCollectionID = getEnv("APPWRITE_LEADS_COLLECTION_ID", "")
	if cfg.LeadsCollectionID == "" {
		return nil, errors.New("APPWRITE_LEADS_COLLECTION_ID obrigatório")
	}

	cfg.AcademiesCollectionID = getEnv("APPWRITE_ACADEMIES_COLLECTION_ID", "")
	if cfg.AcademiesCollectionID == "" {
		return nil, errors.New("APPWRITE_ACADEMIES_COLLECTION_ID obrigatório")
	}

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	recentWindow, err := parseDurationEnv("LEADS_RECENT_WINDOW", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RecentWindow = recentWindow

	// RabbitMQ é opcional: sem host, a fila de notificações fica desligada.
	cfg.RabbitUser = getEnv("RABBITMQ_USER", "guest")
	cfg.RabbitPass = getEnv("RABBITMQ_PASSWORD", "guest")
	cfg.RabbitHost = getEnv("RABBITMQ_HOST", "")
	cfg.RabbitPort = getEnv("RABBITMQ_PORT", "5672")

	cfg.MailHost = getEnv("MAIL_HOST", "")
	mailPortStr := getEnv("MAIL_PORT", "587")
	mailPort, err := strconv.Atoi(mailPortStr)
	if err != nil || mailPort <= 0 {
		return nil, errors.New("MAIL_PORT inválida")
	}
	cfg.MailPort = mailPort
	cfg.MailUser = getEnv("MAIL_USER", "")
	cfg.MailPassword = getEnv("MAIL_PASSWORD", "")
	cfg.MailFrom = getEnv("MAIL_FROM", cfg.MailUser)

	cfg.WhatsAppToken = getEnv("WHATSAPP_ACCESS_TOKEN", "")
	cfg.WhatsAppPhoneID = getEnv("WHATSAPP_PHONE_NUMBER_ID", "")

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
