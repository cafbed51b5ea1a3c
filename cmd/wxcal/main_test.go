package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wxcal/internal/config"
	"wxcal/internal/model"
)

func TestParseFlags(t *testing.T) {
	got, err := parseFlags([]string{
		"-mode", "web",
		"-listen", ":9090",
		"-import", "a.ics",
		"-import", "b.ics",
		"-debug",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.mode != "web" || got.listen != ":9090" || !got.debug {
		t.Fatalf("flags = %+v", got)
	}
	if len(got.imports) != 2 || got.imports[1] != "b.ics" {
		t.Fatalf("imports = %v", got.imports)
	}

	def, err := parseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if def.mode != "tui" || def.configPath != "./config.yaml" {
		t.Fatalf("defaults = %+v", def)
	}
}

func TestParseFlagsRejectsUnknownMode(t *testing.T) {
	if _, err := parseFlags([]string{"-mode", "gui"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestBuildSources(t *testing.T) {
	subs := []config.ICSConfig{
		{ID: "ops", URL: "https://example.com/ops.ics"},
		{Name: "no url"},
		{URL: "https://example.com/other.ics"},
	}
	got := buildSources(subs, []string{"/tmp/feeds/radar.ics"})
	if len(got) != 3 {
		t.Fatalf("sources = %+v", got)
	}
	if got[0].ID != "ops" || got[1].ID != "https://example.com/other.ics" {
		t.Fatalf("subscription ids = %q %q", got[0].ID, got[1].ID)
	}
	if got[2].ID != "file:radar.ics" || got[2].URL != "/tmp/feeds/radar.ics" {
		t.Fatalf("file source = %+v", got[2])
	}
}

func TestClientAddr(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:8080": "127.0.0.1:8080",
		":8080":          "127.0.0.1:8080",
		"0.0.0.0:80":     "127.0.0.1:80",
		"[::]:8080":      "127.0.0.1:8080",
		"calendar.lan:1": "calendar.lan:1",
	}
	for in, want := range cases {
		if got := clientAddr(in); got != want {
			t.Errorf("clientAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAuthHeaders(t *testing.T) {
	conf := config.DefaultConfig()
	if h := authHeaders(conf); h != nil {
		t.Fatalf("headers without auth = %v", h)
	}
	conf.BasicAuth = &config.BasicAuthConfig{Username: "ops", Password: "pw"}
	// base64("ops:pw")
	if got := authHeaders(conf)["Authorization"]; got != "Basic b3BzOnB3" {
		t.Fatalf("authorization = %q", got)
	}
}

func TestExportICS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ics")
	events := []model.Event{{ID: "a", Title: "Balloon launch", Type: model.Task}}
	if err := exportICS(path, events); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "SUMMARY:Balloon launch") {
		t.Fatalf("export:\n%s", b)
	}
}
