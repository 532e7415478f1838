package config

import "testing"

func validConfig() Config {
	var cfg Config
	cfg.Telegram.Token = "123:abc"
	return cfg
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Render.TemplateDir != "template" || cfg.Render.OutputDir != "verzendbewijzen" {
		t.Fatalf("render dirs = %q / %q", cfg.Render.TemplateDir, cfg.Render.OutputDir)
	}
	if cfg.Render.Workers != 2 || cfg.Render.TimeoutSeconds != 45 {
		t.Fatalf("render pool defaults = %d / %d", cfg.Render.Workers, cfg.Render.TimeoutSeconds)
	}
	if cfg.Assets.Dir != "img" {
		t.Fatalf("assets dir = %q", cfg.Assets.Dir)
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "Polling"
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRejectsMissingToken(t *testing.T) {
	var cfg Config
	if err := Normalize(&cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	if err := Normalize(&cfg); err == nil {
		t.Fatal("expected error for webhook mode without url/listen/port")
	}
	cfg.Webhook.URL = "https://bot.example.com/hook"
	cfg.Webhook.Listen = "0.0.0.0"
	cfg.Webhook.Port = 8443
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback "}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != "callback" {
		t.Fatalf("exclusion = %q", cfg.RateLimit.ExcludeUpdates[0])
	}

	cfg = validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	if err := Normalize(&cfg); err == nil {
		t.Fatal("expected error for unsupported exclusion")
	}
}

func TestNormalizeDatabaseRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Enabled = true
	if err := Normalize(&cfg); err == nil {
		t.Fatal("expected error for enabled database without host/name")
	}
	cfg.Database.Host = "localhost"
	cfg.Database.Name = "verzendbot"
	cfg.Database.User = "verzendbot"
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Database.SSLMode != "disable" || cfg.Database.MaxConnections != 5 {
		t.Fatalf("db defaults = %q / %d", cfg.Database.SSLMode, cfg.Database.MaxConnections)
	}
}
