package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type SourceMode string

const (
	// SourceModeLookup resolves the customer id first, then fetches its detail payload.
	SourceModeLookup SourceMode = "lookup"
	// SourceModeEndpoints fetches a fixed list of endpoints and concatenates their rows.
	SourceModeEndpoints SourceMode = "endpoints"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Source        SourceConfig
	AI            AIConfig
	UI            UIConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type SourceConfig struct {
	Mode          SourceMode
	LookupURL     string
	DetailURL     string
	BusinessUnit  string
	Endpoints     []Endpoint
	EndpointsFile string
	Timeout       time.Duration
}

type AIConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	Temperature  float64
	Timeout      time.Duration
	AnswerPrefix string
	RowLimit     int
}

type UIConfig struct {
	TablePreviewRows int
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("SIAD_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid SIAD_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "SIAD_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SIAD_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SIAD_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SIAD_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SIAD_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applySourceMode(lookup, "SIAD_SOURCE_MODE", &cfg.Source.Mode); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SIAD_SOURCE_LOOKUP_URL", &cfg.Source.LookupURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SIAD_SOURCE_DETAIL_URL", &cfg.Source.DetailURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SIAD_SOURCE_BUSINESS_UNIT", &cfg.Source.BusinessUnit); err != nil {
		return Config{}, err
	}
	if err := applyEndpointList(lookup, "SIAD_SOURCE_ENDPOINTS", &cfg.Source.Endpoints); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SIAD_SOURCE_ENDPOINTS_FILE", &cfg.Source.EndpointsFile); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SIAD_SOURCE_TIMEOUT", &cfg.Source.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SIAD_AI_BASE_URL", &cfg.AI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "OPENAI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SIAD_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SIAD_AI_MODEL", &cfg.AI.Model); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "SIAD_AI_TEMPERATURE", &cfg.AI.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SIAD_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}
	if raw, ok := lookup("SIAD_AI_ANSWER_PREFIX"); ok {
		cfg.AI.AnswerPrefix = raw
	}
	if err := applyInt(lookup, "SIAD_AI_ROW_LIMIT", &cfg.AI.RowLimit); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SIAD_UI_TABLE_PREVIEW_ROWS", &cfg.UI.TablePreviewRows); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SIAD_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "SIAD_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Source.EndpointsFile != "" {
		endpoints, err := LoadEndpointsFile(cfg.Source.EndpointsFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Source.Endpoints = append(cfg.Source.Endpoints, endpoints...)
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	switch cfg.Source.Mode {
	case SourceModeLookup:
		if cfg.Source.LookupURL == "" || cfg.Source.DetailURL == "" {
			return Config{}, fmt.Errorf("lookup and detail URLs are required in %s mode", SourceModeLookup)
		}
	case SourceModeEndpoints:
		if len(cfg.Source.Endpoints) == 0 {
			return Config{}, fmt.Errorf("at least one endpoint is required in %s mode", SourceModeEndpoints)
		}
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "siadchat-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Source: SourceConfig{
			Mode:         SourceModeLookup,
			LookupURL:    "https://fjinfor.ddns.net/fvendas/api/api_busca_cli.php?funcao=get_buscacli&empresa={empresa}&cnpj={cnpj}&email={email}",
			DetailURL:    "https://fjinfor.ddns.net/fvendas/api/api_sitpedido.php?funcao=get_sitpedido&cliente={cliente}",
			BusinessUnit: "5",
			Timeout:      30 * time.Second,
		},
		AI: AIConfig{
			BaseURL:      "https://api.openai.com",
			Model:        "gpt-5",
			Temperature:  0.1,
			Timeout:      60 * time.Second,
			AnswerPrefix: "Responda em português: ",
			RowLimit:     200,
		},
		UI: UIConfig{
			TablePreviewRows: 100,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applySourceMode(lookup LookupFunc, key string, dst *SourceMode) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	mode := SourceMode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case SourceModeLookup, SourceModeEndpoints:
		*dst = mode
		return nil
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
}

// applyEndpointList parses "name=url,name=url". A bare URL is named after its position.
func applyEndpointList(lookup LookupFunc, key string, dst *[]Endpoint) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	var endpoints []Endpoint
	for index, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		endpoint := Endpoint{Name: "endpoint-" + strconv.Itoa(index+1), URL: entry}
		if name, url, found := strings.Cut(entry, "="); found && !strings.Contains(name, "://") {
			endpoint.Name = strings.TrimSpace(name)
			endpoint.URL = strings.TrimSpace(url)
		}
		if err := endpoint.validate(); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		endpoints = append(endpoints, endpoint)
	}
	*dst = endpoints
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
