package config

import (
	"log"
	"os"
	"strconv"
)

// Store backend selectors for MCPGUARD_STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	ServerPort string // (OPTIONAL) server port. defaults to 8080

	// Baseline store selection
	StoreBackend string // memory | file | bolt | redis | mongo (defaults to file)
	StorePath    string // file/bolt path (defaults to baselines.json / baselines.db)

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Optional at-rest sealing of the file store (hex-encoded 32-byte keys)
	SealEncryptionKey string
	SealSigningKey    string

	// TLS
	TLSEnabled      bool
	TLSCertFile     string
	TLSKeyFile      string
	TLSClientCAFile string
}

// LoadConfig loads the global configurations from environment variables.
func LoadConfig() Config {
	serverPort := os.Getenv("MCPGUARD_SERVER_PORT")
	if serverPort == "" {
		log.Print("WARNING MCPGUARD_SERVER_PORT env var not set. Using default port 8080")
		serverPort = "8080"
	}

	backend := os.Getenv("MCPGUARD_STORE_BACKEND")
	if backend == "" {
		backend = BackendFile
	}

	storePath := os.Getenv("MCPGUARD_STORE_PATH")
	if storePath == "" {
		switch backend {
		case BackendBolt:
			storePath = "baselines.db"
		default:
			storePath = "baselines.json"
		}
	}

	redisDB := 0
	if v := os.Getenv("MCPGUARD_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("WARNING invalid MCPGUARD_REDIS_DB %q. Using 0", v)
		} else {
			redisDB = n
		}
	}

	return Config{
		ServerPort:        serverPort,
		StoreBackend:      backend,
		StorePath:         storePath,
		RedisAddr:         os.Getenv("MCPGUARD_REDIS_ADDR"),
		RedisPassword:     os.Getenv("MCPGUARD_REDIS_PASSWORD"),
		RedisDB:           redisDB,
		MongoURI:          os.Getenv("MCPGUARD_MONGO_URI"),
		MongoDatabase:     envOrDefault("MCPGUARD_MONGO_DB", "mcpguard"),
		MongoCollection:   envOrDefault("MCPGUARD_MONGO_COLLECTION", "baselines"),
		SealEncryptionKey: os.Getenv("MCPGUARD_SEAL_ENC_KEY"),
		SealSigningKey:    os.Getenv("MCPGUARD_SEAL_SIG_KEY"),
		TLSEnabled:        os.Getenv("MCPGUARD_TLS_ENABLED") == "true",
		TLSCertFile:       os.Getenv("MCPGUARD_TLS_CERT_FILE"),
		TLSKeyFile:        os.Getenv("MCPGUARD_TLS_KEY_FILE"),
		TLSClientCAFile:   os.Getenv("MCPGUARD_TLS_CLIENT_CA_FILE"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
