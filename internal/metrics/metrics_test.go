package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/packager"
	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/resolver"
)

var (
	_ resolver.Recorder = (*Collector)(nil)
	_ packager.Recorder = (*Collector)(nil)
)

func TestCollector_Counters(t *testing.T) {
	c := New()
	c.FileParsed(resolver.KindObject)
	c.FileParsed(resolver.KindObject)
	c.FileParsed(resolver.KindModel)
	c.FileMissing(resolver.KindTexture)
	c.ReferenceRejected("motx_not_texture")
	c.FilePackaged(packager.ResultCopied)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"objects parsed", testutil.ToFloat64(c.FilesParsed.WithLabelValues(resolver.KindObject)), 2},
		{"models parsed", testutil.ToFloat64(c.FilesParsed.WithLabelValues(resolver.KindModel)), 1},
		{"textures missing", testutil.ToFloat64(c.FilesMissing.WithLabelValues(resolver.KindTexture)), 1},
		{"rejected", testutil.ToFloat64(c.ReferencesRejected.WithLabelValues("motx_not_texture")), 1},
		{"copied", testutil.ToFloat64(c.FilesPackaged.WithLabelValues(packager.ResultCopied)), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCollector_ObserveResult(t *testing.T) {
	c := New()
	c.ObserveResult(&resolver.Result{
		Objects:  []string{"a.wmo"},
		Models:   []string{"b.m2", "c.m2"},
		Textures: []string{"d.blp", "e.blp", "f.blp"},
	})

	if got := testutil.ToFloat64(c.AssetsResolved.WithLabelValues(resolver.KindModel)); got != 2 {
		t.Errorf("models: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.AssetsResolved.WithLabelValues(resolver.KindTexture)); got != 3 {
		t.Errorf("textures: got %v, want 3", got)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.FileParsed(resolver.KindTerrain)
	c.ObserveStage("resolve", 1500*time.Millisecond)

	path := filepath.Join(t.TempDir(), "assetparser.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`assetparser_files_parsed_total{kind="terrain"} 1`,
		`assetparser_stage_duration_seconds{stage="resolve"} 1.5`,
		"assetparser_last_run_timestamp_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}
