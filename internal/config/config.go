package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ingressEnvFile is the optional dotenv file carrying the tunnel credentials,
// kept next to the binary the same way the deployment keeps it next to the
// server.
const ingressEnvFile = ".ngrok_env"

// Configuration is the root configuration for all soundprobe subcommands.
type Configuration struct {
	Runner    Runner  `debugmap:"visible"`
	Ingress   Ingress `debugmap:"visible"`
	Mock      Mock    `debugmap:"visible"`
	LogFormat string  `default:"console" debugmap:"visible"`
	LogLevel  string  `default:"info" debugmap:"visible"`
}

// Runner configures the conformance suite.
type Runner struct {
	BaseURL   string `default:"http://localhost:8001" debugmap:"visible"`
	APIKey    string `debugmap:"hidden"`
	AudioFile string `debugmap:"visible"`
	Report    string `debugmap:"visible"`
	HistoryDB string `debugmap:"visible"`

	// Per-call timeouts, by how long the backend legitimately takes.
	HealthTimeout   time.Duration `default:"10s" debugmap:"visible"`
	QuickTimeout    time.Duration `default:"30s" debugmap:"visible"`
	GenerateTimeout time.Duration `default:"120s" debugmap:"visible"`
	AnalyzeTimeout  time.Duration `default:"300s" debugmap:"visible"`
}

// Ingress configures the public tunnel launcher.
type Ingress struct {
	Authtoken     string `debugmap:"hidden"`
	Domain        string `debugmap:"visible"`
	Username      string `debugmap:"visible"`
	Password      string `debugmap:"hidden"`
	OAuthProvider string `debugmap:"visible"`
	Port          int    `default:"8001" debugmap:"visible"`
}

// Mock configures the stand-in LM API server.
type Mock struct {
	Addr      string `default:":8001" debugmap:"visible"`
	JWTSecret string `debugmap:"hidden"`
}

// Load builds a Configuration from defaults and the environment. The
// `.ngrok_env` file is loaded first when present so the ingress credentials
// can live outside the shell profile; a missing file is not an error.
func Load() (*Configuration, error) {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}

	_ = godotenv.Load(ingressEnvFile)

	v := viper.New()
	v.AutomaticEnv()

	cfg.Ingress.Authtoken = v.GetString("NGROK_AUTHTOKEN")
	cfg.Ingress.Domain = v.GetString("NGROK_DOMAIN")
	cfg.Ingress.Username = v.GetString("AUTH_USERNAME")
	cfg.Ingress.Password = v.GetString("AUTH_PASSWORD")
	cfg.Ingress.OAuthProvider = v.GetString("OAUTH_PROVIDER")

	if s := v.GetString("LM_API_KEY"); s != "" {
		cfg.Runner.APIKey = s
	}
	if s := v.GetString("LM_BASE_URL"); s != "" {
		cfg.Runner.BaseURL = s
	}
	if s := v.GetString("MOCK_JWT_SECRET"); s != "" {
		cfg.Mock.JWTSecret = s
	}

	return cfg, nil
}

// DebugMap returns the configuration as a map safe for structured logging.
// Fields tagged `debugmap:"hidden"` are redacted rather than omitted so their
// presence is still visible in logs.
func (c *Configuration) DebugMap() map[string]any {
	redact := func(s string) string {
		if s == "" {
			return ""
		}
		return "<redacted>"
	}
	return map[string]any{
		"runner": map[string]any{
			"baseURL":   c.Runner.BaseURL,
			"apiKey":    redact(c.Runner.APIKey),
			"audioFile": c.Runner.AudioFile,
			"report":    c.Runner.Report,
			"historyDB": c.Runner.HistoryDB,
		},
		"ingress": map[string]any{
			"authtoken":     redact(c.Ingress.Authtoken),
			"domain":        c.Ingress.Domain,
			"username":      c.Ingress.Username,
			"password":      redact(c.Ingress.Password),
			"oauthProvider": c.Ingress.OAuthProvider,
			"port":          c.Ingress.Port,
		},
		"mock": map[string]any{
			"addr":      c.Mock.Addr,
			"jwtSecret": redact(c.Mock.JWTSecret),
		},
		"logFormat": c.LogFormat,
		"logLevel":  c.LogLevel,
	}
}
