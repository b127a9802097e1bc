package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/delivery-cli/internal/branch"
	"github.com/sells-group/delivery-cli/internal/delivery"
	"github.com/sells-group/delivery-cli/internal/geo"
)

// Config holds the full application configuration.
type Config struct {
	ServiceArea ServiceAreaConfig `yaml:"service_area" mapstructure:"service_area"`
	Branches    []BranchConfig    `yaml:"branches" mapstructure:"branches"`
	Location    LocationConfig    `yaml:"location" mapstructure:"location"`
	Geocode     GeocodeConfig     `yaml:"geocode" mapstructure:"geocode"`
	Backend     BackendConfig     `yaml:"backend" mapstructure:"backend"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// ServiceAreaConfig describes the city served and the delivery radius.
type ServiceAreaConfig struct {
	CityName            string  `yaml:"city_name" mapstructure:"city_name"`
	CenterLat           float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLng           float64 `yaml:"center_lng" mapstructure:"center_lng"`
	CityRadiusKm        float64 `yaml:"city_radius_km" mapstructure:"city_radius_km"`
	MaxDeliveryRadiusKm float64 `yaml:"max_delivery_radius_km" mapstructure:"max_delivery_radius_km"`
}

// BranchConfig is one branch entry.
type BranchConfig struct {
	Key     string  `yaml:"key" mapstructure:"key"`
	Name    string  `yaml:"name" mapstructure:"name"`
	Lat     float64 `yaml:"lat" mapstructure:"lat"`
	Lng     float64 `yaml:"lng" mapstructure:"lng"`
	Address string  `yaml:"address" mapstructure:"address"`
}

// LocationConfig configures location acquisition.
type LocationConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeocodeConfig holds Google Geocoding API settings.
type GeocodeConfig struct {
	GoogleAPIKey string  `yaml:"google_api_key" mapstructure:"google_api_key"`
	Region       string  `yaml:"region" mapstructure:"region"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// BackendConfig selects and tunes the order/review backend.
type BackendConfig struct {
	Driver           string `yaml:"driver" mapstructure:"driver"` // "none", "postgres", "sqlite"
	DatabaseURL      string `yaml:"database_url" mapstructure:"database_url"`
	RetryAttempts    int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	BreakerThreshold int    `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int    `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
	MaxConns         int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// BatchConfig configures bulk eligibility checks.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml, environment variables and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DELIVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	area := delivery.DefaultServiceArea()
	v.SetDefault("service_area.city_name", area.CityName)
	v.SetDefault("service_area.center_lat", area.Center.Lat)
	v.SetDefault("service_area.center_lng", area.Center.Lng)
	v.SetDefault("service_area.city_radius_km", area.CityRadiusKm)
	v.SetDefault("service_area.max_delivery_radius_km", area.MaxDeliveryRadiusKm)
	v.SetDefault("branches", defaultBranches())
	v.SetDefault("location.timeout_secs", 10)
	v.SetDefault("geocode.region", "bw")
	v.SetDefault("geocode.rate_limit", 10)
	v.SetDefault("backend.driver", "none")
	v.SetDefault("backend.retry_attempts", 3)
	v.SetDefault("backend.breaker_threshold", 5)
	v.SetDefault("backend.breaker_reset_secs", 30)
	v.SetDefault("backend.max_conns", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("batch.concurrency", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func defaultBranches() []map[string]any {
	var out []map[string]any
	for _, b := range branch.DefaultBranches() {
		out = append(out, map[string]any{
			"key":     b.Key,
			"name":    b.Name,
			"lat":     b.Location.Lat,
			"lng":     b.Location.Lng,
			"address": b.Address,
		})
	}
	return out
}

// Registry builds the branch registry. Duplicate keys and bad coordinates
// are errors.
func (c *Config) Registry() (*branch.Registry, error) {
	branches := make([]branch.Branch, 0, len(c.Branches))
	for _, b := range c.Branches {
		branches = append(branches, branch.Branch{
			Key:      b.Key,
			Name:     b.Name,
			Location: geo.Coordinate{Lat: b.Lat, Lng: b.Lng},
			Address:  b.Address,
		})
	}
	reg, err := branch.NewRegistry(branches)
	if err != nil {
		return nil, eris.Wrap(err, "config: branches")
	}
	return reg, nil
}

// Area converts the service area settings, validating them.
func (c *Config) Area() (delivery.ServiceArea, error) {
	area := delivery.ServiceArea{
		CityName:            c.ServiceArea.CityName,
		Center:              geo.Coordinate{Lat: c.ServiceArea.CenterLat, Lng: c.ServiceArea.CenterLng},
		CityRadiusKm:        c.ServiceArea.CityRadiusKm,
		MaxDeliveryRadiusKm: c.ServiceArea.MaxDeliveryRadiusKm,
	}
	if err := area.Validate(); err != nil {
		return delivery.ServiceArea{}, eris.Wrap(err, "config: service_area")
	}
	return area, nil
}

// Evaluator builds the delivery evaluator from the branches and service area.
func (c *Config) Evaluator() (*delivery.Evaluator, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	area, err := c.Area()
	if err != nil {
		return nil, err
	}
	return delivery.NewEvaluator(reg, area)
}

// Validate checks the settings a command depends on. Mode is "serve",
// "migrate" or "" for the checks every command needs.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Backend.Driver {
	case "none", "postgres", "sqlite":
	default:
		problems = append(problems, "backend.driver must be one of none, postgres, sqlite")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
	case "migrate":
		if c.Backend.Driver == "none" || c.Backend.Driver == "" {
			problems = append(problems, "backend.driver is required")
		}
		if c.Backend.Driver == "postgres" && c.Backend.DatabaseURL == "" {
			problems = append(problems, "backend.database_url is required")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
