package so

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the kernel's tunable parameter set, loaded from a YAML file
// alongside the machine's program images.
type Config struct {
	// InterruptInterval is the number of instructions between clock
	// interrupts. Required, must be positive.
	InterruptInterval int `yaml:"intervalo_interrupcao"`

	// MaxProcesses bounds the process table's capacity. Required, must be
	// positive.
	MaxProcesses int `yaml:"max_processos"`

	// Quantum is the number of clock ticks a descriptor may run before the
	// round-robin and priority-aging policies preempt it. Required, must be
	// positive.
	Quantum int `yaml:"quantum"`

	// Policy selects the scheduling algorithm: "base", "round_robin", or
	// "priority_aging". Defaults to "base" when omitted.
	Policy string `yaml:"escalonador"`

	// ReportPath is where the end-of-run metrics report is written.
	// Defaults to "so24b.log" when omitted.
	ReportPath string `yaml:"relatorio"`

	// LogLevel sets the minimum severity the kernel's structured logger
	// emits: "debug", "info", "warn", or "error". Defaults to "info" when
	// omitted.
	LogLevel string `yaml:"log_level"`
}

var validPolicies = map[string]Policy{
	"base":           PolicyBase,
	"round_robin":    PolicyRoundRobin,
	"priority_aging": PolicyPriorityAging,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// LoadConfig reads the YAML file at path, applies defaults, and validates
// all required fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: cannot parse %q: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed for %q: %w", path, err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Policy == "" {
		cfg.Policy = "base"
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = "so24b.log"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func validateConfig(cfg *Config) error {
	var errs []error

	if cfg.InterruptInterval <= 0 {
		errs = append(errs, errors.New("intervalo_interrupcao must be positive"))
	}
	if cfg.MaxProcesses <= 0 {
		errs = append(errs, errors.New("max_processos must be positive"))
	}
	if cfg.Quantum <= 0 {
		errs = append(errs, errors.New("quantum must be positive"))
	}
	if _, ok := validPolicies[cfg.Policy]; !ok {
		errs = append(errs, fmt.Errorf("escalonador %q must be one of: base, round_robin, priority_aging", cfg.Policy))
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", cfg.LogLevel))
	}

	return errors.Join(errs...)
}

// policy translates the validated Policy string into its enum value. Callers
// must only invoke this after LoadConfig has returned successfully.
func (cfg Config) policy() Policy {
	return validPolicies[cfg.Policy]
}
