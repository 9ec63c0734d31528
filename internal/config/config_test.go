package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 3000},
		OpenAI: OpenAIConfig{
			APIKey: "test-key",
		},
		Parks: ParksConfig{
			ServiceURL: "https://api.example.com/parks",
		},
		Persona: PersonaConfig{
			Description: "Soy QUER, una inteligencia artificial de EcoquerAI.",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestValidate_MissingParksURL(t *testing.T) {
	cfg := validConfig()
	cfg.Parks.ServiceURL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing parks service url")
	}
}

func TestValidate_MissingPersona(t *testing.T) {
	cfg := validConfig()
	cfg.Persona.Description = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing persona description")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Parks.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Parks.TopK)
	}
	if cfg.Conversation.MaxTokens != 2048 {
		t.Errorf("expected MaxTokens=2048, got %d", cfg.Conversation.MaxTokens)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %f", cfg.OpenAI.Temperature)
	}
	if cfg.RateLimit.Requests != 60 || cfg.RateLimit.WindowSec != 60 {
		t.Errorf("expected 60 requests per 60s, got %d per %ds", cfg.RateLimit.Requests, cfg.RateLimit.WindowSec)
	}
	if cfg.Persona.Label != "QUER AI" {
		t.Errorf("expected label QUER AI, got %q", cfg.Persona.Label)
	}
	if cfg.Persona.Language != "es" {
		t.Errorf("expected language es, got %q", cfg.Persona.Language)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("QUER_TEST_KEY", "sk-123")

	in := []byte("api_key: ${QUER_TEST_KEY}\nmodel: ${QUER_TEST_MODEL:-gpt-3.5-turbo}\n")
	out := string(expandEnvVars(in))

	expected := "api_key: sk-123\nmodel: gpt-3.5-turbo\n"
	if out != expected {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, expected)
	}
}

func TestSystemContext_JoinsFragments(t *testing.T) {
	p := PersonaConfig{
		Description: "Soy QUER.",
		Context:     []string{"dato uno", "dato dos"},
	}

	got := p.SystemContext()
	want := "Soy QUER. dato uno, dato dos"
	if got != want {
		t.Errorf("SystemContext() = %q, want %q", got, want)
	}
}

func TestSystemContext_SkipsEmptyFragments(t *testing.T) {
	p := PersonaConfig{
		Description: "Soy QUER.",
		Context:     []string{"", "dato uno", "  "},
	}

	got := p.SystemContext()
	want := "Soy QUER. dato uno"
	if got != want {
		t.Errorf("SystemContext() = %q, want %q", got, want)
	}
}
