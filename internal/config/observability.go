package config

// OTLPConfig holds OpenTelemetry trace export configuration.
//
// Traces are exported over OTLP/HTTP when Endpoint is set; an empty
// Endpoint disables export entirely. See internal/app for exporter setup.
type OTLPConfig struct {
	// Endpoint is the OTLP/HTTP collector endpoint (e.g. "localhost:4318").
	// Empty disables trace export.
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// ServiceName tags exported spans (default: coursechat).
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	// Environment is the deployment environment tag (default: dev).
	Environment string `mapstructure:"environment" json:"environment"`
}

// Enabled reports whether trace export is configured.
func (c OTLPConfig) Enabled() bool {
	return c.Endpoint != ""
}
