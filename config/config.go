package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	RPCAddress     string `toml:"RPCAddress"`
	MetricsAddress string `toml:"MetricsAddress"`
	AuditAddress   string `toml:"AuditAddress"`
	DataDir        string `toml:"DataDir"`
	NetworkName    string `toml:"NetworkName"`
	Environment    string `toml:"Environment"`
	LogFile        string `toml:"LogFile"`
	RPCToken       string `toml:"RPCToken"`
	RPCTokenEnv    string `toml:"RPCTokenEnv"`
	RPCTokenFile   string `toml:"RPCTokenFile"`
	AuditDSN       string `toml:"AuditDSN"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = ":9090"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./point-data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "point-local"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "dev"
	}
}

// ResolveRPCToken returns the bearer token for mutating RPC methods. An inline
// token wins, then an env var, then a token file. Empty everywhere means auth
// is disabled, which is only acceptable on a loopback deployment.
func (c *Config) ResolveRPCToken() (string, error) {
	if token := strings.TrimSpace(c.RPCToken); token != "" {
		return token, nil
	}
	if env := strings.TrimSpace(c.RPCTokenEnv); env != "" {
		if token := strings.TrimSpace(os.Getenv(env)); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("config: RPCTokenEnv %q is set but the variable is empty", env)
	}
	if file := strings.TrimSpace(c.RPCTokenFile); file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("config: read RPC token file: %w", err)
		}
		token := strings.TrimSpace(string(raw))
		if token == "" {
			return "", fmt.Errorf("config: RPC token file %q is empty", file)
		}
		return token, nil
	}
	return "", nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:     ":8080",
		MetricsAddress: ":9090",
		AuditAddress:   "",
		DataDir:        "./point-data",
		NetworkName:    "point-local",
		Environment:    "dev",
		RPCTokenEnv:    "POINTCHAIN_RPC_TOKEN",
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
