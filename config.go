package pgwire

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/jackc/pgpassfile"
	"github.com/jackc/pgservicefile"
)

// Config holds everything needed to dial and authenticate a connection. It
// is built by ParseConfig and may be adjusted by the caller before passing
// it to ConnectConfig.
type Config struct {
	Host     string
	Port     uint16
	User     string
	Password string
	Database string

	// Options is forwarded verbatim as the "options" startup parameter.
	// The wire protocol and this client place no structure on its
	// contents; interpreting it is entirely up to the server.
	Options string

	// RuntimeParams holds any configuration map entries not recognized as
	// one of the fields above; each becomes a StartupMessage parameter.
	RuntimeParams map[string]string

	// NormalizeText is carried on the Config but is not read by the value
	// codec: decoded text-family values are returned byte-for-byte as the
	// server sent them whether or not it is set, and no Unicode
	// normalization is applied.
	NormalizeText bool

	// Tracer, if it implements ConnectTracer and/or QueryTracer, is
	// notified around connection establishment and command execution. Nil
	// disables tracing entirely; see package tracelog for a zerolog-backed
	// implementation.
	Tracer any
}

// recognizedKeys are the configuration map entries ParseConfig maps onto
// named Config fields; everything else passes through to RuntimeParams.
var recognizedKeys = map[string]bool{
	"host": true, "port": true, "user": true, "password": true,
	"database": true, "options": true,
}

// ParseConfig builds a Config from a configuration map (§6). Settings are
// applied in this order, each step overriding the previous one: built-in
// defaults, a TOML overlay file named by PGWIRE_CONFIG_TOML (which carries
// no password), the explicit map entries, then the service=<name> group
// from pgservicefile. If no password is set after that, ~/.pgpass (or
// PGPASSFILE) is consulted.
func ParseConfig(settings map[string]string) (*Config, error) {
	cfg := &Config{
		Host:          "localhost",
		Port:          5432,
		RuntimeParams: map[string]string{},
	}

	if err := applyTOMLOverlay(cfg); err != nil {
		return nil, err
	}

	for k, v := range settings {
		switch k {
		case "host":
			cfg.Host = v
		case "port":
			p, err := strconv.ParseUint(v, 10, 16)
			if err != nil {
				return nil, newParameterError("invalid port %q: %w", v, err)
			}
			cfg.Port = uint16(p)
		case "user":
			cfg.User = v
		case "password":
			cfg.Password = v
		case "database":
			cfg.Database = v
		case "options":
			cfg.Options = v
		default:
			if !recognizedKeys[k] {
				cfg.RuntimeParams[k] = v
			}
		}
	}

	if cfg.User == "" {
		if u, err := user.Current(); err == nil {
			cfg.User = u.Username
		}
	}

	if serviceName := settings["service"]; serviceName != "" {
		if err := applyService(cfg, serviceName); err != nil {
			return nil, err
		}
	}

	if cfg.Password == "" {
		cfg.Password = lookupPassfilePassword(cfg)
	}

	return cfg, nil
}

// tomlOverlay is an optional file of default connection settings, resolved
// via BurntSushi/toml, applied before explicit map entries so the map can
// still override anything it names.
type tomlOverlay struct {
	Host     string `toml:"host"`
	Port     uint16 `toml:"port"`
	User     string `toml:"user"`
	Database string `toml:"database"`
	Options  string `toml:"options"`
}

func applyTOMLOverlay(cfg *Config) error {
	path := os.Getenv("PGWIRE_CONFIG_TOML")
	if path == "" {
		return nil
	}
	var overlay tomlOverlay
	if _, err := toml.DecodeFile(path, &overlay); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return newParameterError("reading TOML overlay %s: %w", path, err)
	}
	if overlay.Host != "" {
		cfg.Host = overlay.Host
	}
	if overlay.Port != 0 {
		cfg.Port = overlay.Port
	}
	if overlay.User != "" {
		cfg.User = overlay.User
	}
	if overlay.Database != "" {
		cfg.Database = overlay.Database
	}
	if overlay.Options != "" {
		cfg.Options = overlay.Options
	}
	return nil
}

func applyService(cfg *Config, name string) error {
	path := os.Getenv("PGSERVICEFILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".pg_service.conf")
	}
	sf, err := pgservicefile.ReadServicefile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return newParameterError("reading service file %s: %w", path, err)
	}
	service, err := sf.GetService(name)
	if err != nil {
		return newParameterError("service %q: %w", name, err)
	}
	for k, v := range service.Settings {
		switch k {
		case "host":
			cfg.Host = v
		case "port":
			p, err := strconv.ParseUint(v, 10, 16)
			if err == nil {
				cfg.Port = uint16(p)
			}
		case "user":
			cfg.User = v
		case "password":
			cfg.Password = v
		case "dbname":
			cfg.Database = v
		}
	}
	return nil
}

func lookupPassfilePassword(cfg *Config) string {
	path := os.Getenv("PGPASSFILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		path = filepath.Join(home, ".pgpass")
	}
	pf, err := pgpassfile.ReadPassfile(path)
	if err != nil {
		return ""
	}
	return pf.FindPassword(cfg.Host, strconv.Itoa(int(cfg.Port)), cfg.Database, cfg.User)
}
