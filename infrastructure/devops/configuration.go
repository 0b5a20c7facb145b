package devops

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Configuration is everything the server needs at startup. Resolution
// order: defaults, then the YAML file named by CONFIG_FILE, then the SSM
// parameter named by CONFIG_SSM_PARAMETER, then plain env vars.
type Configuration struct {
	Port           string `yaml:"port"`
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"maxConnections"`
	RedisAddress   string `yaml:"redisAddress"`
	JWTSecret      string `yaml:"jwtSecret"`
	GeocoderURL    string `yaml:"geocoderUrl"`

	SlackToken        string `yaml:"slackToken"`
	SlackAuditChannel string `yaml:"slackAuditChannel"`

	SESSender     string   `yaml:"sesSender"`
	ReviewerEmail []string `yaml:"reviewerEmail"`
}

var (
	once    sync.Once
	loaded  *Configuration
	loadErr error
)

// Load resolves the configuration once per process.
func Load(ctx context.Context) (*Configuration, error) {
	once.Do(func() {
		godotenv.Load()

		cfg := &Configuration{
			Port:           ":8090",
			MaxConnections: 30,
		}

		if path := os.Getenv("CONFIG_FILE"); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				loadErr = fmt.Errorf("read config file: %w", err)
				return
			}
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				loadErr = fmt.Errorf("unmarshal config file: %w", err)
				return
			}
		}

		if param := os.Getenv("CONFIG_SSM_PARAMETER"); param != "" {
			if err := loadFromSSM(ctx, param, cfg); err != nil {
				loadErr = err
				return
			}
		}

		applyEnv(cfg)
		loaded = cfg
	})

	return loaded, loadErr
}

func loadFromSSM(ctx context.Context, paramName string, into *Configuration) error {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(awsCfg)

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("get parameter: %w", err)
	}

	if err := yaml.Unmarshal([]byte(*out.Parameter.Value), into); err != nil {
		return fmt.Errorf("unmarshal ssm yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Configuration) {
	setIfPresent(&cfg.Port, "PORT")
	setIfPresent(&cfg.DSN, "DSN")
	setIfPresent(&cfg.RedisAddress, "REDIS_ADDRESS")
	setIfPresent(&cfg.JWTSecret, "JWT_SECRET")
	setIfPresent(&cfg.GeocoderURL, "GEOCODER_URL")
	setIfPresent(&cfg.SlackToken, "SLACK_BOT_TOKEN")
	setIfPresent(&cfg.SlackAuditChannel, "SLACK_AUDIT_CHANNEL")
	setIfPresent(&cfg.SESSender, "SES_SENDER")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
