// Package config loads and validates application configuration.
package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Realtime RealtimeConfig `mapstructure:"realtime" validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RealtimeConfig tunes the WebSocket connection layer.
type RealtimeConfig struct {
	// SendBufferSize is the per-connection outbound queue length. Events
	// that do not fit are dropped for that connection.
	SendBufferSize int `mapstructure:"send_buffer_size" validate:"required,gt=0"`

	// WriteTimeout bounds a single frame write to a client.
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required"`

	// PingInterval is how often keepalive pings are sent. Must leave room
	// before PongTimeout expires.
	PingInterval time.Duration `mapstructure:"ping_interval" validate:"required"`

	// PongTimeout is how long to wait for any client read before the
	// connection is considered dead.
	PongTimeout time.Duration `mapstructure:"pong_timeout" validate:"required"`
}

// ReminderConfig tunes the due-soon sweep.
type ReminderConfig struct {
	// Interval is how often the sweep runs.
	Interval time.Duration `mapstructure:"interval" validate:"required"`

	// Window is how far ahead a due date counts as due soon.
	Window time.Duration `mapstructure:"window" validate:"required"`
}
