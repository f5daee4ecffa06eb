package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MEETPOINT_SEARCH_API_KEY", "tvly-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MEETPOINT_SERVER_PORT", "9090")

	cfg, err := Load("meetpoint-test")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "tvly-test", cfg.Search.APIKey)
	assert.Equal(t, "sk-test", cfg.Formatter.APIKey)
	assert.Equal(t, "https://api.tavily.com", cfg.Search.BaseURL)
	assert.Equal(t, 20, cfg.Search.Timeout)
	assert.Equal(t, "off", cfg.Formatter.Validation)
	assert.Equal(t, "meetpoint-test", cfg.Telemetry.ServiceName)
}

func TestLoad_SearchContractNotConfigurable(t *testing.T) {
	t.Setenv("MEETPOINT_SEARCH_API_KEY", "tvly-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MEETPOINT_SEARCH_MAX_RESULTS", "20")
	t.Setenv("MEETPOINT_SEARCH_DEPTH", "advanced")

	cfg, err := Load("meetpoint-test")
	require.NoError(t, err)

	assert.Equal(t, SearchConfig{
		BaseURL: "https://api.tavily.com",
		APIKey:  "tvly-test",
		Timeout: 20,
	}, cfg.Search)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("MEETPOINT_SEARCH_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("MEETPOINT_FORMATTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load("meetpoint-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.api_key is required")
	assert.Contains(t, err.Error(), "formatter.api_key is required")
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10, RequestTimeout: 30},
		Providers: ProvidersConfig{
			Postcodes: EndpointConfig{BaseURL: "https://api.postcodes.io", Timeout: 5},
			Routing:   EndpointConfig{BaseURL: "https://router.project-osrm.org", Timeout: 5},
		},
		Search:    SearchConfig{APIKey: "k"},
		Formatter: FormatterConfig{APIKey: "k", Model: "m", Validation: "off"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "bad policy", mutate: func(c *Config) { c.Formatter.Validation = "strict" }, wantErr: "formatter.validation"},
		{name: "nats without url", mutate: func(c *Config) { c.NATS.Enabled = true }, wantErr: "nats.url"},
		{name: "no postcodes url", mutate: func(c *Config) { c.Providers.Postcodes.BaseURL = "" }, wantErr: "providers.postcodes.base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
