package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iabetor/noticias/internal/news"
)

func sampleSnapshot() *news.Snapshot {
	img := "https://cdn.example.com/a.jpg?w=1&h=2"
	a := &news.Article{
		ID:           42,
		Title:        "Ciência & Espaço: missão à Lua",
		Link:         "https://example.com/a",
		Date:         time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC),
		Author:       "Redação",
		Category:     "ciencia",
		CategoryName: "Ciência & Espaço",
		ImageURL:     &img,
		Excerpt:      "Resumo <curto>",
		ReadTime:     3,
		Domain:       "example.com",
		HasImage:     true,
	}
	return &news.Snapshot{
		FrontPage: []*news.Article{a},
		Categories: map[string]*news.CategorySnapshot{
			"ciencia": news.NewCategorySnapshot("Ciência & Espaço", "Descobertas", []*news.Article{a}),
		},
		Metadata: news.Metadata{
			GeneratedAt:     time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
			TotalArticles:   1,
			DurationSeconds: 12.34,
			Version:         news.FormatVersion,
			CategoryOrder:   []string{"ciencia"},
		},
	}
}

func TestEncode_PreservesUnicodeAndIndents(t *testing.T) {
	data, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	s := string(data)
	for _, want := range []string{
		"Ciência & Espaço",
		"Resumo <curto>",
		"?w=1&h=2",
		"\n  \"capa\": [",
		`"content": null`,
		`"crawl_duration_seconds": 12.34`,
		`"version": "1.1.0"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(s, `\u00`) {
		t.Error("non-ASCII and HTML characters should not be escaped")
	}
}

func TestWriteFile_CreatesDirsAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "data", "latest.json")
	snap := sampleSnapshot()
	if err := WriteFile(path, snap); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}

	var got news.Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got.Metadata.TotalArticles != 1 {
		t.Errorf("TotalArticles = %d, want 1", got.Metadata.TotalArticles)
	}
	if len(got.FrontPage) != 1 || got.FrontPage[0].ID != 42 {
		t.Errorf("unexpected front page: %+v", got.FrontPage)
	}
	if cat := got.Categories["ciencia"]; cat == nil || cat.Count != 1 {
		t.Errorf("unexpected category: %+v", cat)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("临时文件未清理: %s", e.Name())
		}
	}
}

func TestWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, sampleSnapshot()); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !strings.HasPrefix(string(data), "{") {
		t.Errorf("file not overwritten: %q", data)
	}
}

func TestWriteFile_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(filepath.Join(blocker, "latest.json"), sampleSnapshot()); err == nil {
		t.Error("expected error when parent path is a file")
	}
}
