package publishers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `publishers:
  - id: webhook
    type: http
    http:
      url: https://hooks.example.com/articles
      timeout_seconds: 10
  - id: queue
    type: sqs
    enabled: false
    sqs:
      uri: https://sqs.ap-south-1.amazonaws.com/123/articles
      region: ap-south-1
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:ap-south-1:123:articles
      region: ap-south-1
  - id: stream
    type: gcppubsub
    gcppubsub:
      project_id: khobor-project
      topic: articles
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 4 {
		t.Fatalf("expected 4 publishers, got %d", len(reg.All()))
	}
	if len(reg.Enabled()) != 3 {
		t.Fatalf("expected 3 enabled publishers, got %d", len(reg.Enabled()))
	}

	cfg, ok := reg.ByID("webhook")
	if !ok {
		t.Fatal("webhook config missing")
	}
	if cfg.HTTP.Method != "POST" {
		t.Fatalf("expected default method POST, got %q", cfg.HTTP.Method)
	}
	if cfg.HTTP.TimeoutSeconds != 10 {
		t.Fatalf("unexpected timeout %d", cfg.HTTP.TimeoutSeconds)
	}

	if _, ok := reg.ByID("queue"); !ok {
		t.Fatal("disabled publisher should still resolve by id")
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "publishers.json",
		`{"publishers":[{"id":"hook","type":"http","http":{"url":"https://example.com"}}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, ok := reg.ByID("hook")
	if !ok || cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := map[string]string{
		"missing id":         `publishers: [{type: http, http: {url: "https://x"}}]`,
		"missing type":       `publishers: [{id: a}]`,
		"http without url":   `publishers: [{id: a, type: http, http: {}}]`,
		"sqs without region": `publishers: [{id: a, type: sqs, sqs: {uri: "https://q"}}]`,
		"sns without arn":    `publishers: [{id: a, type: sns, sns: {region: "ap-south-1"}}]`,
		"pubsub no project":  `publishers: [{id: a, type: gcppubsub, gcppubsub: {topic: t}}]`,
		"duplicate ids":      `publishers: [{id: a, type: http, http: {url: "https://x"}}, {id: a, type: http, http: {url: "https://y"}}]`,
		"empty file":         `publishers: []`,
	}
	for name, content := range cases {
		path := writeFile(t, "publishers.yaml", content)
		if _, err := LoadRegistry(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 5}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 || pubs[0].Type() != TypeHTTP {
		t.Fatalf("unexpected publishers %+v", pubs)
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	reg := DefaultRegistry()
	if _, err := BuildAll(context.Background(), reg, []PublisherConfig{{ID: "x", Type: "kafka"}}, nil); err == nil {
		t.Fatal("expected error for unregistered type")
	}
}
