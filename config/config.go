package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL             string
	DatabaseName    string
	BaseURL         string
	Port            string
	RedisURL        string
	RPCURL          string
	StakingContract string
	AdminAPIKey     string
	SendgridAPIKey  string
	MinStakeSeconds int64
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	minStake := int64(604800) // 7 days
	if v := os.Getenv("MIN_STAKE_SECONDS"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			minStake = parsed
		}
	}

	return &Config{
		URL:             os.Getenv("DB_URI"),
		DatabaseName:    os.Getenv("DB_NAME"),
		BaseURL:         os.Getenv("BASE_URL"),
		Port:            os.Getenv("PORT"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RPCURL:          os.Getenv("RPC_URL"),
		StakingContract: os.Getenv("STAKING_CONTRACT_ADDRESS"),
		AdminAPIKey:     os.Getenv("ADMIN_API_KEY"),
		SendgridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		MinStakeSeconds: minStake,
	}

}

// ErrorStatus logs the underlying error server-side and writes the
// {"error": ..., "message": ...} body for a given status code. The err text
// never reaches the client.
func ErrorStatus(errLabel, message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(errLabel)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	body := map[string]string{"error": errLabel}
	if message != "" {
		body["message"] = message
	}
	_ = json.NewEncoder(w).Encode(body)
}

// InternalError writes the generic 500 body for dependency failures.
func InternalError(w http.ResponseWriter, err error) {
	ErrorStatus("Internal server error", "An error occurred while processing your request", http.StatusInternalServerError, w, err)
}
