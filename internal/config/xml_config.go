// Package config provides XML-based configuration management for self-hosted deployment.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"QuickPDF"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Session lifecycle configuration
	Session SessionConfig `xml:"Session"`

	// Preview cache configuration
	Preview PreviewConfig `xml:"Preview"`

	// Tool execution configuration
	Tools ToolsConfig `xml:"Tools"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory             string `xml:"DataDirectory"`
	MaxUploadSizeMB           int64  `xml:"MaxUploadSizeMB"`
	UploadRetentionMinutes    int    `xml:"UploadRetentionMinutes"`
	ProcessedRetentionMinutes int    `xml:"ProcessedRetentionMinutes"`
	PreviewRetentionMinutes   int    `xml:"PreviewRetentionMinutes"`
}

// SessionConfig contains session countdown and sweep settings
type SessionConfig struct {
	CountdownSeconds     int    `xml:"CountdownSeconds"`
	SweepIntervalSeconds int    `xml:"SweepIntervalSeconds"`
	CookieName           string `xml:"CookieName"`
}

// PreviewConfig contains preview rendering and cache settings
type PreviewConfig struct {
	CacheTTLMinutes int `xml:"CacheTTLMinutes"`
	ThumbnailDPI    int `xml:"ThumbnailDPI"`
	JPEGQuality     int `xml:"JPEGQuality"`
}

// ToolsConfig contains tool execution settings
type ToolsConfig struct {
	CatalogPath            string `xml:"CatalogPath"`
	CallsPerMinute         int    `xml:"CallsPerMinute"`
	DeferredCleanupSeconds int    `xml:"DeferredCleanupSeconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 60,
			IdleTimeout:  120,
			BodyLimit:    "64M",
		},
		Storage: StorageConfig{
			DataDirectory:             "./data",
			MaxUploadSizeMB:           10,
			UploadRetentionMinutes:    10,
			ProcessedRetentionMinutes: 10,
			PreviewRetentionMinutes:   10,
		},
		Session: SessionConfig{
			CountdownSeconds:     600,
			SweepIntervalSeconds: 60,
			CookieName:           "quickpdf_session",
		},
		Preview: PreviewConfig{
			CacheTTLMinutes: 10,
			ThumbnailDPI:    100,
			JPEGQuality:     85,
		},
		Tools: ToolsConfig{
			CatalogPath:            "./tools.yaml",
			CallsPerMinute:         30,
			DeferredCleanupSeconds: 600,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- QuickPDF Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("QUICKPDF_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("QUICKPDF_DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	if catalog := os.Getenv("QUICKPDF_TOOL_CATALOG"); catalog != "" {
		c.Tools.CatalogPath = catalog
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Tools.CatalogPath) {
		c.Tools.CatalogPath = filepath.Join(configDir, c.Tools.CatalogPath)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// CountdownDuration returns the session countdown window.
func (c *AppConfig) CountdownDuration() time.Duration {
	return time.Duration(c.Session.CountdownSeconds) * time.Second
}

// SweepInterval returns the periodic reclamation interval.
func (c *AppConfig) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalSeconds) * time.Second
}

// CacheTTL returns the preview manifest cache lifetime.
func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.Preview.CacheTTLMinutes) * time.Minute
}

// RetentionWindows returns the per-class file retention durations keyed
// the way the reclamation scheduler expects them.
func (c *AppConfig) RetentionWindows() (uploads, processed, previews time.Duration) {
	return time.Duration(c.Storage.UploadRetentionMinutes) * time.Minute,
		time.Duration(c.Storage.ProcessedRetentionMinutes) * time.Minute,
		time.Duration(c.Storage.PreviewRetentionMinutes) * time.Minute
}

// DeferredCleanupDelay returns how long processed results stay before
// the post-run purge fires.
func (c *AppConfig) DeferredCleanupDelay() time.Duration {
	return time.Duration(c.Tools.DeferredCleanupSeconds) * time.Second
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Storage.DataDirectory, err)
	}
	return nil
}
