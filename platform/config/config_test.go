package config

import (
	"testing"

	"phone_standardizer/platform/apperr"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.GetInputDir() != "./non-standardized-list" || cfg.GetOutputDir() != "./standardized-list" {
		t.Fatalf("unexpected directories %q %q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.GetDefaultRegion() != "AT" || cfg.GetPhoneField() != "tel" || cfg.GetSentinel() != "unknown" {
		t.Fatalf("unexpected normalizer defaults %+v", cfg)
	}
	if cfg.GetDelimiter() != ',' || cfg.GetSignedValue() != "0" {
		t.Fatalf("unexpected csv defaults %q %q", cfg.Delimiter, cfg.SignedValue)
	}
	want := []string{"Nachname", "Weitere Vornamen", "Firma"}
	if len(cfg.NameFields) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.NameFields)
	}
	for i := range want {
		if cfg.NameFields[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.NameFields)
		}
	}
	if cfg.IsMinIOEnabled() {
		t.Fatal("expected MinIO to be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEFAULT_REGION", "de")
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("PREFIX_MATCH_POLICY", "Longest")
	t.Setenv("STRICT_VALIDATION", "true")
	t.Setenv("NAME_FIELDS", "Firma, Nachname")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultRegion != "DE" || cfg.GetDelimiter() != ';' {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.PrefixMatchPolicy != "longest" || !cfg.StrictValidation {
		t.Fatalf("unexpected normalizer overrides %+v", cfg)
	}
	if len(cfg.NameFields) != 2 || cfg.NameFields[0] != "Firma" {
		t.Fatalf("unexpected name fields %v", cfg.NameFields)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown region":  {"DEFAULT_REGION": "CRO"},
		"long delimiter":  {"CSV_DELIMITER": ";;"},
		"quote delimiter": {"CSV_DELIMITER": `"`},
		"bad policy":      {"PREFIX_MATCH_POLICY": "shortest"},
		"minio no bucket": {"MINIO_ENDPOINT": "localhost:9000"},
		"no name fields":  {"NAME_FIELDS": " , "},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
