package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	SQLite     SQLiteConfig
	Redis      RedisConfig
	Embedding  EmbeddingConfig
	Classifier ClassifierConfig
	Ranker     RankerConfig
	Scraper    ScraperConfig
	Ingestion  IngestionConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLHours int
}

type EmbeddingConfig struct {
	APIKey     string
	Model      string
	TimeoutSec int
}

// ClassifierConfig carries the multi-signal scoring contract. The weights and
// the acceptance threshold decide which questions the service will answer.
type ClassifierConfig struct {
	KeywordWeight   float64
	SemanticWeight  float64
	PhraseWeight    float64
	AcceptThreshold float64
}

type RankerConfig struct {
	Threshold     float64
	DBLimit       int
	UploadLimit   int
	LexicalWeight float64
}

type ScraperConfig struct {
	TimeoutSec  int
	MaxSources  int
	UserAgent   string
	MaxBodySize int
}

type IngestionConfig struct {
	Folder      string
	IntervalMin int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/policy-agent")

	viper.SetEnvPrefix("POLICY_AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("sqlite.path", "./data/policyqa.db")

	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlHours", 24)

	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.timeoutSec", 15)

	viper.SetDefault("classifier.keywordWeight", 0.5)
	viper.SetDefault("classifier.semanticWeight", 0.3)
	viper.SetDefault("classifier.phraseWeight", 0.2)
	viper.SetDefault("classifier.acceptThreshold", 0.2)

	viper.SetDefault("ranker.threshold", 0.25)
	viper.SetDefault("ranker.dbLimit", 5)
	viper.SetDefault("ranker.uploadLimit", 8)
	viper.SetDefault("ranker.lexicalWeight", 0.0)

	viper.SetDefault("scraper.timeoutSec", 15)
	viper.SetDefault("scraper.maxSources", 5)
	viper.SetDefault("scraper.userAgent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("scraper.maxBodySize", 5242880)

	viper.SetDefault("ingestion.folder", "./training_data")
	viper.SetDefault("ingestion.intervalMin", 0)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
