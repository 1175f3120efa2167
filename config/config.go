// Package config loads the settings shared by every platform application:
// identity provider endpoints and keys, cookie scope and sign-in policy.
package config

import (
	"strings"
	"time"

	"github.com/gangerdermatology/auth/internal/util"
	"github.com/go-playground/errors/v5"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	defaultAppName        = "ganger"
	defaultEmailDomain    = "gangerdermatology.com"
	defaultSessionMaxAge  = 7 * 24 * time.Hour
	defaultRequestTimeout = 10 * time.Second
	defaultLoginPath      = "/auth/login"

	appEnvKey = "app_env"
)

// envBindings maps each setting to its environment variables. The first
// variable set wins.
var envBindings = map[string][]string{
	"base_url":              {"SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"},
	"anon_key":              {"SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"},
	"service_role_key":      {"SUPABASE_SERVICE_ROLE_KEY"},
	"project_ref":           {"SUPABASE_PROJECT_REF"},
	"jwt_secret":            {"SUPABASE_JWT_SECRET"},
	"app_name":              {"APP_NAME"},
	"app_url":               {"APP_URL", "NEXT_PUBLIC_APP_URL"},
	"login_url":             {"AUTH_LOGIN_URL"},
	"cookie_domain":         {"COOKIE_DOMAIN"},
	"cookie_key":            {"AUTH_COOKIE_KEY"},
	"session_key":           {"AUTH_SESSION_KEY"},
	"allowed_email_domains": {"ALLOWED_EMAIL_DOMAINS"},
	"database_url":          {"DATABASE_URL"},
	"production":            {"AUTH_PRODUCTION"},
	"session_max_age":       {"AUTH_SESSION_MAX_AGE"},
	"request_timeout":       {"AUTH_REQUEST_TIMEOUT"},
	appEnvKey:               {"APP_ENV", "NODE_ENV"},
}

// Config is the auth configuration of one application.
type Config struct {
	// BaseURL is the identity provider URL, for example https://pfqtarvrmhpqqlkyrzkx.supabase.co.
	BaseURL        string `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`
	AnonKey        string `mapstructure:"anon_key" yaml:"anon_key" validate:"required"`
	ServiceRoleKey string `mapstructure:"service_role_key" yaml:"service_role_key"`
	// ProjectRef names the session storage key. When empty it is taken from a
	// BaseURL of the form https://<ref>.supabase.co; custom domains must set it.
	ProjectRef string `mapstructure:"project_ref" yaml:"project_ref"`
	// JWTSecret selects local HS256 token verification. Without it tokens are
	// verified against the provider's JWKS.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`

	// AppName scopes per-application cookies such as the active team.
	AppName string `mapstructure:"app_name" yaml:"app_name" validate:"required"`
	// AppURL is the public base URL of the application. The OAuth callback is
	// AppURL + "/auth/callback".
	AppURL   string `mapstructure:"app_url" yaml:"app_url" validate:"required,url"`
	LoginURL string `mapstructure:"login_url" yaml:"login_url" validate:"required"`

	CookieDomain string `mapstructure:"cookie_domain" yaml:"cookie_domain"`
	// CookieKey is a base64 key of at least 32 bytes sealing the sign-in flow cookie.
	CookieKey string `mapstructure:"cookie_key" yaml:"cookie_key" validate:"required,base64"`
	// SessionKey seals the shared session cookie. Leave it empty when browser
	// code reads the session.
	SessionKey string `mapstructure:"session_key" yaml:"session_key" validate:"omitempty,base64"`

	AllowedEmailDomains []string `mapstructure:"allowed_email_domains" yaml:"allowed_email_domains" validate:"dive,fqdn"`

	DatabaseURL string `mapstructure:"database_url" yaml:"database_url"`

	Production     bool          `mapstructure:"production" yaml:"production"`
	SessionMaxAge  time.Duration `mapstructure:"session_max_age" yaml:"session_max_age" validate:"gte=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gt=0"`
}

// Default returns a Config holding the platform defaults.
func Default() *Config {
	return &Config{
		AppName:             defaultAppName,
		LoginURL:            defaultLoginPath,
		AllowedEmailDomains: []string{defaultEmailDomain},
		SessionMaxAge:       defaultSessionMaxAge,
		RequestTimeout:      defaultRequestTimeout,
	}
}

// FromEnv returns the defaults overlaid with the environment.
func FromEnv() (*Config, error) {
	return Load("")
}

// Load reads the YAML file at path, when path is not empty, and overlays the
// environment on it. An explicit production setting wins over APP_ENV.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, vars := range envBindings {
		if err := v.BindEnv(append([]string{key}, vars...)...); err != nil {
			return nil, errors.Wrapf(err, "viper.Viper.BindEnv(): %s", key)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "viper.Viper.ReadInConfig(): %s", path)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "viper.Viper.Unmarshal()")
	}
	c.AllowedEmailDomains = util.SplitList(strings.Join(c.AllowedEmailDomains, ","))
	if !v.IsSet("production") {
		c.Production = strings.EqualFold(v.GetString(appEnvKey), "production")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("app_name", d.AppName)
	v.SetDefault("login_url", d.LoginURL)
	v.SetDefault("allowed_email_domains", d.AllowedEmailDomains)
	v.SetDefault("session_max_age", d.SessionMaxAge)
	v.SetDefault("request_timeout", d.RequestTimeout)
}

// CallbackURL returns the absolute URL of the OAuth callback handler.
func (c *Config) CallbackURL() string {
	return strings.TrimSuffix(c.AppURL, "/") + "/auth/callback"
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return errors.Wrap(err, "validator.Validate.Struct()")
	}

	return nil
}
