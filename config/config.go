package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ServerPort string

	// 日志配置
	LogLevel   string
	LogPath    string
	LogMaxSize int // 单个日志文件上限，MB

	// Redis配置，仅用于曲库查询缓存，留空地址则禁用
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// 音乐查询配置
	SearchLimit    int // 单次搜索返回的候选数
	MusicTimeout   int // 上游请求超时，秒
	MusicRateLimit int // 每个音源每秒请求数上限

	// 音源地址，测试时可指向本地mock
	QQAPIBase      string
	QQVkeyBase     string
	NeteaseAPIBase string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() 不会覆盖已存在的环境变量
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogPath:    getEnv("LOG_PATH", "logs/tingfm.log"),
		LogMaxSize: getEnvInt("LOG_MAX_SIZE", 100),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SearchLimit:    getEnvInt("SEARCH_LIMIT", 5),
		MusicTimeout:   getEnvInt("MUSIC_TIMEOUT_SECONDS", 10),
		MusicRateLimit: getEnvInt("MUSIC_RATE_LIMIT", 5),

		QQAPIBase:      getEnv("QQ_API_BASE", "https://c.y.qq.com"),
		QQVkeyBase:     getEnv("QQ_VKEY_BASE", "https://u.y.qq.com"),
		NeteaseAPIBase: getEnv("NETEASE_API_BASE", "https://music.163.com"),
	}
}
