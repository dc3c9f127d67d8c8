// Package tlslistener opens the optional HTTPS listener.
package tlslistener

import (
	"crypto/tls"
	"fmt"
	"net"
	"path/filepath"

	"github.com/edgecomet/faleproxy/internal/common/configtypes"
)

// ResolvePaths returns cfg with relative certificate and key paths joined to configDir.
func ResolvePaths(cfg configtypes.TLSConfig, configDir string) configtypes.TLSConfig {
	if cfg.CertFile != "" && !filepath.IsAbs(cfg.CertFile) {
		cfg.CertFile = filepath.Join(configDir, cfg.CertFile)
	}
	if cfg.KeyFile != "" && !filepath.IsAbs(cfg.KeyFile) {
		cfg.KeyFile = filepath.Join(configDir, cfg.KeyFile)
	}
	return cfg
}

// New loads the key pair and binds cfg.Listen. The minimum protocol version
// is TLS 1.3 unless cfg.MinVersion is "1.2".
func New(cfg configtypes.TLSConfig) (net.Listener, error) {
	minVersion, err := parseMinVersion(cfg.MinVersion)
	if err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		MinVersion:   minVersion,
		Certificates: []tls.Certificate{cert},
	}

	tcpListener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP listener: %w", err)
	}

	return tls.NewListener(tcpListener, tlsConfig), nil
}

func parseMinVersion(v string) (uint16, error) {
	switch v {
	case "", "1.3":
		return tls.VersionTLS13, nil
	case "1.2":
		return tls.VersionTLS12, nil
	}
	return 0, fmt.Errorf("unsupported TLS version %q", v)
}
