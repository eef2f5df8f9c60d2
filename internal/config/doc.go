// Package config defines the configuration structure for soundprobe.
//
// Configuration is organized into logical sections (Runner, Ingress, Mock)
// plus top-level logging settings, with defaults applied via creasty/defaults
// and environment values bound through viper.
//
// # Runner Configuration
//
//	┌─────────────────┬─────────────────────────┬────────────────────────────────────┐
//	│ Field           │ Default                 │ Description                        │
//	├─────────────────┼─────────────────────────┼────────────────────────────────────┤
//	│ BaseURL         │ "http://localhost:8001" │ LM API base URL                    │
//	│ APIKey          │ ""                      │ Bearer token for requests          │
//	│ AudioFile       │ ""                      │ Sample audio for understand tests  │
//	│ Report          │ ""                      │ Path for the xlsx run report       │
//	│ HistoryDB       │ ""                      │ Path for the DuckDB run history    │
//	│ HealthTimeout   │ 10s                     │ Health gate deadline               │
//	│ QuickTimeout    │ 30s                     │ Validation-only calls              │
//	│ GenerateTimeout │ 120s                    │ inspire / format calls             │
//	│ AnalyzeTimeout  │ 300s                    │ understand (audio analysis) calls  │
//	└─────────────────┴─────────────────────────┴────────────────────────────────────┘
//
// # Ingress Configuration
//
//	┌───────────────┬─────────┬──────────────────────────────────────────┐
//	│ Field         │ Default │ Environment                              │
//	├───────────────┼─────────┼──────────────────────────────────────────┤
//	│ Authtoken     │ ""      │ NGROK_AUTHTOKEN                          │
//	│ Domain        │ ""      │ NGROK_DOMAIN                             │
//	│ Username      │ ""      │ AUTH_USERNAME (basic-auth policy)        │
//	│ Password      │ ""      │ AUTH_PASSWORD (basic-auth policy)        │
//	│ OAuthProvider │ ""      │ OAUTH_PROVIDER (oauth policy, eg google) │
//	│ Port          │ 8001    │ Local port the tunnel forwards to        │
//	└───────────────┴─────────┴──────────────────────────────────────────┘
//
// Ingress credentials may also live in a `.ngrok_env` dotenv file next to the
// binary; it is loaded before the environment is read and is optional.
//
// # Debug Logging
//
// Fields are tagged with `debugmap` so the configuration can be logged safely:
//
//	zap.S().Debugw("configuration loaded", "config", cfg.DebugMap())
//
// Secrets are redacted, not omitted, so their presence remains visible.
package config
