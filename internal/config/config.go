// Package config loads remediation settings from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"autoremediator/internal/remediation"
	"autoremediator/internal/rules"
	"autoremediator/internal/terraform"
)

// Config holds every setting of the remediator
type Config struct {
	ApprovedAMIIDs    []string      `mapstructure:"approved_ami_ids"`
	AdminPort         int           `mapstructure:"admin_port"`
	AdminProtocol     string        `mapstructure:"admin_protocol"`
	UnrestrictedCIDRs []string      `mapstructure:"unrestricted_cidrs"`
	StopPollInterval  time.Duration `mapstructure:"stop_poll_interval"`
	StopTimeout       time.Duration `mapstructure:"stop_timeout"`
	AMIAction         string        `mapstructure:"ami_action"`
	TerraformPath     string        `mapstructure:"terraform_path"`
	Region            string        `mapstructure:"region"`
	LogLevel          string        `mapstructure:"log_level"`
	PushgatewayURL    string        `mapstructure:"pushgateway_url"`
}

// Load reads configuration. Environment variables override the file, which
// overrides the defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("approved_ami_ids", "")
	v.SetDefault("admin_port", rules.DefaultAdminPort)
	v.SetDefault("admin_protocol", rules.DefaultAdminProtocol)
	v.SetDefault("unrestricted_cidrs", rules.AnyIPv4)
	v.SetDefault("stop_poll_interval", remediation.DefaultPollInterval)
	v.SetDefault("stop_timeout", remediation.DefaultStopTimeout)
	v.SetDefault("ami_action", string(remediation.AMIActionTerminate))
	v.SetDefault("log_level", "info")

	// APPROVED_AMI_ID is the historical single value name; both accept comma lists
	_ = v.BindEnv("approved_ami_ids", "APPROVED_AMI_IDS", "APPROVED_AMI_ID")
	_ = v.BindEnv("admin_port", "REMEDIATION_ADMIN_PORT")
	_ = v.BindEnv("admin_protocol", "REMEDIATION_ADMIN_PROTOCOL")
	_ = v.BindEnv("unrestricted_cidrs", "REMEDIATION_UNRESTRICTED_CIDRS")
	_ = v.BindEnv("stop_poll_interval", "REMEDIATION_STOP_POLL_INTERVAL")
	_ = v.BindEnv("stop_timeout", "REMEDIATION_STOP_TIMEOUT")
	_ = v.BindEnv("ami_action", "REMEDIATION_AMI_ACTION")
	_ = v.BindEnv("terraform_path", "REMEDIATION_TERRAFORM_PATH")
	_ = v.BindEnv("region", "AWS_REGION")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("pushgateway_url", "METRICS_PUSHGATEWAY_URL")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Comma separated env values arrive as a single element
	cfg.ApprovedAMIIDs = splitList(cfg.ApprovedAMIIDs)
	cfg.UnrestrictedCIDRs = splitList(cfg.UnrestrictedCIDRs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make remediation misbehave.
// An empty AMI allow-list is not rejected here; the RunInstances pipeline
// reports it per event so ingress remediation keeps working.
func (c *Config) Validate() error {
	if c.AdminPort < 0 || c.AdminPort > 65535 {
		return fmt.Errorf("admin port %d out of range", c.AdminPort)
	}
	if len(c.UnrestrictedCIDRs) == 0 {
		return fmt.Errorf("at least one unrestricted CIDR is required")
	}
	switch remediation.AMIAction(c.AMIAction) {
	case remediation.AMIActionTerminate, remediation.AMIActionStop:
	default:
		return fmt.Errorf("unsupported AMI action %q (want terminate or stop)", c.AMIAction)
	}
	if c.StopPollInterval <= 0 || c.StopTimeout <= 0 {
		return fmt.Errorf("stop poll interval and timeout must be positive")
	}
	return nil
}

// IngressPolicy builds the matcher policy
func (c *Config) IngressPolicy() rules.IngressPolicy {
	return rules.IngressPolicy{
		AdminPort:         c.AdminPort,
		AdminProtocol:     c.AdminProtocol,
		UnrestrictedCIDRs: c.UnrestrictedCIDRs,
	}
}

// Settings builds the dispatcher settings, adding extra approved AMIs such
// as those declared in Terraform.
func (c *Config) Settings(extraAMIs ...string) remediation.Settings {
	ids := append(append([]string{}, c.ApprovedAMIIDs...), extraAMIs...)
	return remediation.Settings{
		IngressPolicy: c.IngressPolicy(),
		ApprovedAMIs:  rules.NewAMIAllowList(ids...),
		AMIAction:     remediation.AMIAction(c.AMIAction),
		PollInterval:  c.StopPollInterval,
		StopTimeout:   c.StopTimeout,
	}
}

// ResolveSettings builds the dispatcher settings, reading approved AMIs
// from the Terraform path when one is configured.
func (c *Config) ResolveSettings(tf terraform.IProvider) (remediation.Settings, error) {
	if c.TerraformPath == "" || tf == nil {
		return c.Settings(), nil
	}
	amis, err := tf.ApprovedAMIs(c.TerraformPath)
	if err != nil {
		return remediation.Settings{}, fmt.Errorf("failed to read approved AMIs from terraform: %w", err)
	}
	return c.Settings(amis...), nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
