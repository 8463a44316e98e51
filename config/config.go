package config

import "time"

type Config struct {
	Web   Web
	DB    DB
	Email Email
	Cors  Cors
	Auth  Auth
	Oauth Oauth
	Rate  Rate
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost:5432"`
	Name       string `conf:"default:healthstore"`
	DisableTLS bool   `conf:"default:true"`
}

type Email struct {
	Host     string `conf:"default:localhost"`
	Port     string `conf:"default:2525"`
	Address  string `conf:"default:no-reply@healthstore.local"`
	Password string `conf:"mask"`
}

type Cors struct {
	Origin string
}

type Auth struct {
	SessionLifetime time.Duration `conf:"default:24h"`
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:30s"`
	LoginRedirectURL string        `conf:"default:/"`
	Google           Provider
}

type Provider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string
}

type Rate struct {
	Burst      int           `conf:"default:20"`
	Interval   time.Duration `conf:"default:100ms"`
	ExpiryMins int           `conf:"default:30"`
}
