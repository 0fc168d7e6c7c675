package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath     string
	DataDir    string
	DropRawDir string
	OutputDir  string

	ZipLookupFile    string
	MasterClientList string

	ClientMatchThreshold float64
	OwnerMatchThreshold  float64
	MinNameWords         int

	CRMAPIBaseURL   string
	CRMAPIToken     string
	CRMRateLimitRPS int
	CRMTimeoutMs    int

	AgencyName    string
	AgencyPhone   string
	AgencyAddress string
	AgencyWebsite string

	SignerName  string
	SignerTitle string
	SignerEmail string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool
	// IMAPLookbackDays bounds the unseen-mail search; 0 disables the window.
	IMAPLookbackDays int

	DropListenerProvider     string
	DropListenerLabel        string
	DropListenerIntervalSec  int
	DropListenerFetchMax     int
	DropListenerProcessBatch int
	DropListenerAutoExport   bool
	DropListenerMode         string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	dataDir := getEnv("DATA_DIR", filepath.Join(cwd, "data"))

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(dataDir, "app.db")),
		DataDir:    dataDir,
		DropRawDir: getEnv("DROP_RAW_DIR", filepath.Join(dataDir, "raw")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		ZipLookupFile:    getEnv("ZIP_LOOKUP_FILE", filepath.Join(dataDir, "zip_lookup.csv")),
		MasterClientList: getEnv("MASTER_CLIENT_LIST", filepath.Join(dataDir, "master_client_list.xlsx")),

		ClientMatchThreshold: getEnvFloat("CLIENT_MATCH_THRESHOLD", 85),
		OwnerMatchThreshold:  getEnvFloat("OWNER_MATCH_THRESHOLD", 85),
		MinNameWords:         getEnvInt("MIN_NAME_WORDS", 2),

		CRMAPIBaseURL:   getEnv("CRM_API_BASE_URL", ""),
		CRMAPIToken:     getEnv("CRM_API_TOKEN", ""),
		CRMRateLimitRPS: getEnvInt("CRM_RATE_LIMIT_RPS", 5),
		CRMTimeoutMs:    getEnvInt("CRM_TIMEOUT_MS", 30000),

		AgencyName:    getEnv("AGENCY_NAME", "Jones Insurance Advisors, Inc"),
		AgencyPhone:   getEnv("AGENCY_PHONE", "(772) 569-6802"),
		AgencyAddress: getEnv("AGENCY_ADDRESS", "3885 20th Street,\nVero Beach, FL 32960"),
		AgencyWebsite: getEnv("AGENCY_WEBSITE", "www.jonesinsuranceadvisors.com"),

		SignerName:  getEnv("SIGNER_NAME", "Brian Jones"),
		SignerTitle: getEnv("SIGNER_TITLE", "Vice President"),
		SignerEmail: getEnv("SIGNER_EMAIL", "Brian@jonesia.com"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:         getEnv("IMAP_HOST", ""),
		IMAPPort:         getEnvInt("IMAP_PORT", 993),
		IMAPSecure:       getEnvBool("IMAP_SECURE", true),
		IMAPUser:         getEnv("IMAP_USER", ""),
		IMAPPassword:     getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen:     getEnvBool("IMAP_MARK_SEEN", false),
		IMAPLookbackDays: getEnvInt("IMAP_LOOKBACK_DAYS", 14),

		DropListenerProvider:     getEnv("DROP_LISTENER_PROVIDER", "gmail"),
		DropListenerLabel:        getEnv("DROP_LISTENER_LABEL", "INBOX"),
		DropListenerIntervalSec:  getEnvInt("DROP_LISTENER_INTERVAL_SEC", 60),
		DropListenerFetchMax:     getEnvInt("DROP_LISTENER_FETCH_MAX", 20),
		DropListenerProcessBatch: getEnvInt("DROP_LISTENER_PROCESS_BATCH", 20),
		DropListenerAutoExport:   getEnvBool("DROP_LISTENER_AUTO_EXPORT", true),
		DropListenerMode:         getEnv("DROP_LISTENER_MODE", "personal"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
