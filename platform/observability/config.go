package observability

// Config настройки OpenTelemetry
type Config struct {
	// Enabled false -> noop providers, ничего не экспортируется
	Enabled bool
	// OTLPEndpoint host:port OTLP gRPC коллектора (traces и metrics)
	OTLPEndpoint string
	// SamplingRatio доля семплируемых трасс, 0..1
	SamplingRatio float64
	ServiceName   string
	// DeploymentEnvironment local/docker
	DeploymentEnvironment string
	ServiceVersion        string
}
