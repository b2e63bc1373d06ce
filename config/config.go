// config/config.go
package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Tables names the document-store tables and the membership index.
type Tables struct {
	Users      string `envconfig:"USERS_TABLE" default:"Users"`
	Groups     string `envconfig:"GROUPS_TABLE" default:"Groups"`
	Daily      string `envconfig:"DAILY_TABLE" default:"Daily"`
	Bounties   string `envconfig:"BOUNTIES_TABLE" default:"Bounties"`
	GroupIndex string `envconfig:"GROUP_INDEX" default:"group_id-index"`
}

// AppConfig holds everything the backend process reads from the environment.
type AppConfig struct {
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:"127.0.0.1:5200"`
	ShellToken  string `envconfig:"SHELL_TOKEN"`
	ShellOrigin string `envconfig:"SHELL_ORIGIN" default:"http://localhost:5173"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	TZ          string `envconfig:"TZ" default:"Local"`

	AWS struct {
		Region          string `envconfig:"AWS_REGION" default:"us-east-1"`
		AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
		Endpoint        string `envconfig:"DYNAMODB_ENDPOINT"`
	} `envconfig:""`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"dynamodb"`
	Tables       Tables `envconfig:""`

	LeetCode struct {
		ValidateURL string `envconfig:"LEETCODE_API_URL"`
		APIKey      string `envconfig:"LEETCODE_API_KEY"`
		GraphQLURL  string `envconfig:"LEETCODE_GRAPHQL_URL" default:"https://leetcode.com/graphql"`
	} `envconfig:""`

	Notify struct {
		TrackingFile string        `envconfig:"TRACKING_FILE" default:"notification-tracking.json"`
		Icon         string        `envconfig:"NOTIFY_ICON"`
		StartDelay   time.Duration `envconfig:"NOTIFY_START_DELAY" default:"5s"`
		Interval     time.Duration `envconfig:"NOTIFY_INTERVAL" default:"1h"`
	} `envconfig:""`
}

// Load reads .env (if present) and then the process environment.
func Load() AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Location resolves TZ into the zone used for "today". Unknown zones fall back to local time.
func (c AppConfig) Location() *time.Location {
	if c.TZ == "" || c.TZ == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		log.Printf("⚠️  Unknown TZ %q, using local time", c.TZ)
		return time.Local
	}
	return loc
}
