package service

type Config struct {
	SigningKey      string `toml:"signing_key"`
	SessionTTL      string `toml:"session_ttl"`
	ResetTTL        string `toml:"reset_ttl"`
	ResetMode       string `toml:"reset_mode"` // "direct" or "token"
	ResetURL        string `toml:"reset_url"`  // link base for token mode emails
	UpstreamTimeout string `toml:"upstream_timeout"`
}

const (
	ResetModeDirect = "direct"
	ResetModeToken  = "token"
)
