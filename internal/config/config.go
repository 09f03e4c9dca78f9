package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// DefaultConfigFile is read by Load when present in the working directory
const DefaultConfigFile = "config.yaml"

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// EngineConfig represents batch pricing engine configuration
type EngineConfig struct {
	ExecutionMode string `yaml:"execution_mode"` // auto, parallel, sequential
	Workers       int    `yaml:"workers"`        // 0 = GOMAXPROCS
}

// PricingConfig holds the default option parameters used when a request omits them
type PricingConfig struct {
	Spot             float64 `yaml:"spot"`
	Strike           float64 `yaml:"strike"`
	Rate             float64 `yaml:"rate"`
	Volatility       float64 `yaml:"volatility"`
	Maturity         float64 `yaml:"maturity"`
	DividendYield    float64 `yaml:"dividend_yield"`
	CallPurchase     float64 `yaml:"call_purchase"`
	PutPurchase      float64 `yaml:"put_purchase"`
	StrictVolatility bool    `yaml:"strict_volatility"` // reject sigma < 0 at the front ends
}

// HeatmapConfig holds the default sweep ranges and image size
type HeatmapConfig struct {
	SpotMin     float64 `yaml:"spot_min"`
	SpotMax     float64 `yaml:"spot_max"`
	VolMin      float64 `yaml:"vol_min"`
	VolMax      float64 `yaml:"vol_max"`
	SpotSteps   int     `yaml:"spot_steps"`
	VolSteps    int     `yaml:"vol_steps"`
	ImageWidth  int     `yaml:"image_width"`  // pixels
	ImageHeight int     `yaml:"image_height"` // pixels
}

// CSVConfig represents CSV export configuration
type CSVConfig struct {
	FilenameFormat string `yaml:"filename_format"`
}

type Config struct {
	// Server settings
	Port string `yaml:"port"`

	Logging LoggingConfig `yaml:"logging"`
	Engine  EngineConfig  `yaml:"engine"`
	Pricing PricingConfig `yaml:"pricing"`
	Heatmap HeatmapConfig `yaml:"heatmap"`
	CSV     CSVConfig     `yaml:"csv"`
}

// Load builds the configuration from environment variables and config.yaml
func Load() *Config {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom builds defaults from environment variables, then overlays every
// non-zero value found in the YAML file at path. A missing or unreadable file
// leaves the environment defaults untouched.
func LoadFrom(path string) *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Logging: LoggingConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
			LogFile:  getEnv("LOG_FILE", "bspnl.log"),
		},
		Engine: EngineConfig{
			ExecutionMode: getEnv("ENGINE_EXECUTION_MODE", "auto"),
			Workers:       getEnvInt("ENGINE_WORKERS", 0),
		},
		Pricing: PricingConfig{
			Spot:             getEnvFloat("DEFAULT_SPOT", 100),
			Strike:           getEnvFloat("DEFAULT_STRIKE", 100),
			Rate:             getEnvFloat("DEFAULT_RATE", 0.05),
			Volatility:       getEnvFloat("DEFAULT_VOLATILITY", 0.2),
			Maturity:         getEnvFloat("DEFAULT_MATURITY", 1.0),
			DividendYield:    getEnvFloat("DEFAULT_DIVIDEND_YIELD", 0),
			CallPurchase:     getEnvFloat("DEFAULT_CALL_PURCHASE", 10),
			PutPurchase:      getEnvFloat("DEFAULT_PUT_PURCHASE", 10),
			StrictVolatility: getEnvBool("STRICT_VOLATILITY", false),
		},
		Heatmap: HeatmapConfig{
			SpotMin:     getEnvFloat("HEATMAP_SPOT_MIN", 80),
			SpotMax:     getEnvFloat("HEATMAP_SPOT_MAX", 120),
			VolMin:      getEnvFloat("HEATMAP_VOL_MIN", 0.1),
			VolMax:      getEnvFloat("HEATMAP_VOL_MAX", 0.5),
			SpotSteps:   getEnvInt("HEATMAP_SPOT_STEPS", 20),
			VolSteps:    getEnvInt("HEATMAP_VOL_STEPS", 20),
			ImageWidth:  getEnvInt("HEATMAP_IMAGE_WIDTH", 800),
			ImageHeight: getEnvInt("HEATMAP_IMAGE_HEIGHT", 600),
		},
		CSV: CSVConfig{
			FilenameFormat: getEnv("CSV_FILENAME_FORMAT", "{time}_{kind}_pnl.csv"),
		},
	}

	if yamlCfg := loadYAMLConfig(path); yamlCfg != nil {
		cfg.merge(yamlCfg)
	}

	return cfg
}

// merge copies every non-zero field of other onto cfg
func (cfg *Config) merge(other *Config) {
	if other.Port != "" {
		cfg.Port = other.Port
	}

	if other.Logging.LogLevel != "" {
		cfg.Logging.LogLevel = other.Logging.LogLevel
	}
	if other.Logging.LogFile != "" {
		cfg.Logging.LogFile = other.Logging.LogFile
	}

	if other.Engine.ExecutionMode != "" {
		cfg.Engine.ExecutionMode = other.Engine.ExecutionMode
	}
	if other.Engine.Workers > 0 {
		cfg.Engine.Workers = other.Engine.Workers
	}

	p := other.Pricing
	setFloat(&cfg.Pricing.Spot, p.Spot)
	setFloat(&cfg.Pricing.Strike, p.Strike)
	setFloat(&cfg.Pricing.Rate, p.Rate)
	setFloat(&cfg.Pricing.Volatility, p.Volatility)
	setFloat(&cfg.Pricing.Maturity, p.Maturity)
	setFloat(&cfg.Pricing.DividendYield, p.DividendYield)
	setFloat(&cfg.Pricing.CallPurchase, p.CallPurchase)
	setFloat(&cfg.Pricing.PutPurchase, p.PutPurchase)
	if p.StrictVolatility {
		cfg.Pricing.StrictVolatility = true
	}

	h := other.Heatmap
	setFloat(&cfg.Heatmap.SpotMin, h.SpotMin)
	setFloat(&cfg.Heatmap.SpotMax, h.SpotMax)
	setFloat(&cfg.Heatmap.VolMin, h.VolMin)
	setFloat(&cfg.Heatmap.VolMax, h.VolMax)
	setInt(&cfg.Heatmap.SpotSteps, h.SpotSteps)
	setInt(&cfg.Heatmap.VolSteps, h.VolSteps)
	setInt(&cfg.Heatmap.ImageWidth, h.ImageWidth)
	setInt(&cfg.Heatmap.ImageHeight, h.ImageHeight)

	if other.CSV.FilenameFormat != "" {
		cfg.CSV.FilenameFormat = other.CSV.FilenameFormat
	}
}

func loadYAMLConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		// Could not read config file - silently return nil
		return nil
	}

	var yamlCfg Config
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		// Could not parse config file - silently return nil
		return nil
	}

	return &yamlCfg
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
