package api

import "errors"

type CORSConfig struct {
	TrustedOrigins []string `yaml:"trusted_origins"`
}

type Config struct {
	Addr     string     `yaml:"addr"`
	CertFile string     `yaml:"cert_file"`
	KeyFile  string     `yaml:"key_file"`
	CORS     CORSConfig `yaml:"cors"`

	// MaxBodyBytes limits the size of a check request. Zero means 1MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("api server address is required")
	}

	if c.MaxBodyBytes < 0 {
		return errors.New("max body bytes cannot be negative")
	}

	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("cert file and key file must be set together")
	}

	return nil
}

func (c Config) maxBodyBytes() int64 {
	if c.MaxBodyBytes == 0 {
		return 1_048_576
	}
	return c.MaxBodyBytes
}
