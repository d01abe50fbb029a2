package document

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/JonMunkholm/BRMReports/internal/config"
	"github.com/JonMunkholm/BRMReports/internal/core"
)

func TestReload_DropsCachedTemplate(t *testing.T) {
	path := writeTemplate(t)
	a := NewAssembler(config.ReportConfig{TemplatePath: path, Sheet: DefaultSheet, StartRow: 2})

	if _, err := a.Render(context.Background(), sampleTable()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	// Still cached.
	if _, err := a.Render(context.Background(), sampleTable()); err != nil {
		t.Fatalf("cached Render() error = %v", err)
	}

	a.Reload()
	if _, err := a.Render(context.Background(), sampleTable()); !errors.Is(err, core.ErrTemplate) {
		t.Fatalf("Render() after Reload error = %v, want ErrTemplate", err)
	}
}

func TestWatchTemplate_ReloadsOnRemove(t *testing.T) {
	path := writeTemplate(t)
	a := NewAssembler(config.ReportConfig{TemplatePath: path, Sheet: DefaultSheet, StartRow: 2})

	if err := a.CheckTemplate(); err != nil {
		t.Fatalf("CheckTemplate() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.WatchTemplate(ctx); err != nil {
		t.Fatalf("WatchTemplate() error = %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := a.Render(context.Background(), sampleTable()); errors.Is(err, core.ErrTemplate) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("template cache was not dropped after the file was removed")
}

func TestWatchTemplate_NoTemplate(t *testing.T) {
	a := NewAssembler(config.ReportConfig{})
	if err := a.WatchTemplate(context.Background()); err != nil {
		t.Errorf("WatchTemplate() without a template error = %v", err)
	}
}
