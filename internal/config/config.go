package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Keys       APIKeys
	Ai         AIConfig
	Annotation AnnotationConfig
	Realtime   RealtimeConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	WebSocketLogPath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
	Debug      bool
}

type APIKeys struct {
	JwtSecret string
	// WorkerToken authenticates the document processing worker on the
	// status endpoint.
	WorkerToken string
}

type AIConfig struct {
	OllamaBaseURL       string
	OllamaModel         string
	EmbedTopic          string
	SearchLimit         int
	SimilarityThreshold float64
}

type AnnotationConfig struct {
	MinShapeSize float64
	SessionTTL   time.Duration
}

type RealtimeConfig struct {
	// ClusterChannel is the redis pub/sub channel shared by every instance.
	ClusterChannel string
	EventStream    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WebSocketLogPath:   getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Debug:      getEnv("DB_DEBUG", "false") == "true",
		},
		Keys: APIKeys{
			JwtSecret:   getEnv("JWT_SECRET", ""),
			WorkerToken: getEnv("DOCUMENT_WORKER_TOKEN", ""),
		},
		Ai: AIConfig{
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:         getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbedTopic:          getEnv("EMBED_ANNOTATION_TOPIC_NAME", "EMBED_ANNOTATION_CONTENT"),
			SearchLimit:         getEnvAsInt("ANNOTATION_SEARCH_LIMIT", 20),
			SimilarityThreshold: getEnvAsFloat("ANNOTATION_SEARCH_THRESHOLD", 0.35),
		},
		Annotation: AnnotationConfig{
			MinShapeSize: getEnvAsFloat("ANNOTATION_MIN_SHAPE_SIZE", 5),
			SessionTTL:   time.Duration(getEnvAsInt("AUTHORING_SESSION_TTL_MINUTES", 30)) * time.Minute,
		},
		Realtime: RealtimeConfig{
			ClusterChannel: getEnv("REALTIME_CLUSTER_CHANNEL", "cluster_events"),
			EventStream:    getEnv("NATS_EVENT_STREAM", "EVENTS"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
