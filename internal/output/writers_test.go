package output

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/masmgr/gitpace/internal/model"
)

func statusReport() *StatusReport {
	return &StatusReport{Action: "status", GeneratedAt: sampleNow, View: sampleView()}
}

func chartReport() *ChartReport {
	v := sampleView()
	return &ChartReport{GeneratedAt: sampleNow, Repository: v.Repository, Pace: v.Pace, Chart: v.Chart}
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleStatusWriter(t *testing.T) {
	out := writeToTemp(t, "status.txt", func(path string) error {
		return (&ConsoleStatusWriter{}).Write(statusReport(), OutputOptions{OutputPath: path})
	})

	assertContains(t, out,
		"acme/widgets (main)",
		"10 / 30",
		"aaaa1111  Fix parser",
		"cccc3333  Add | pipes",
		"latest -> eeee5555 (#30)",
		"M  a.go",
		"R  old.go -> new.go",
		"Pace (20 commits remaining)",
		"2025-07-14", // ideal finish
		"2025-07-20", // ideal catch-up
		"never",      // actual never catches up
		"pick a fixed target to finish",
		"Warning: recorded commit 01234567",
	)
}

func TestConsoleStatusWriter_TargetReached(t *testing.T) {
	report := statusReport()
	report.View.CurrentIndex = 29
	report.View.Pace = samplePace()
	report.View.Pace.CommitsRemaining = 0
	report.View.Warnings = nil

	out := writeToTemp(t, "status.txt", func(path string) error {
		return (&ConsoleStatusWriter{}).Write(report, OutputOptions{OutputPath: path})
	})
	assertContains(t, out, "Target reached")
	if strings.Contains(out, "pick a fixed target") {
		t.Errorf("unexpected pace note on an empty projection:\n%s", out)
	}
	if strings.Contains(out, "Warning:") {
		t.Errorf("unexpected warning section:\n%s", out)
	}
}

func TestJSONStatusWriter(t *testing.T) {
	out := writeToTemp(t, "status.json", func(path string) error {
		return (&JSONStatusWriter{}).Write(statusReport(), OutputOptions{OutputPath: path})
	})

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if parsed["action"] != "status" {
		t.Errorf("action = %v", parsed["action"])
	}
	if parsed["generated_at"] != "2025-07-10T12:00:00Z" {
		t.Errorf("generated_at = %v", parsed["generated_at"])
	}
	if parsed["current_index"] != float64(9) {
		t.Errorf("current_index = %v", parsed["current_index"])
	}
	repo := parsed["repository"].(map[string]any)
	if repo["name"] != "acme/widgets" {
		t.Errorf("repository.name = %v", repo["name"])
	}
	preview := parsed["preview"].(map[string]any)
	files := preview["files"].([]any)
	if len(files) != 2 || files[1].(map[string]any)["kind"] != "renamed" {
		t.Errorf("preview.files = %v", files)
	}
	p := parsed["pace"].(map[string]any)
	if p["commits_remaining"] != float64(20) {
		t.Errorf("pace.commits_remaining = %v", p["commits_remaining"])
	}
	if p["actual"].(map[string]any)["catch_up"] != "insufficient-pace" {
		t.Errorf("pace.actual.catch_up = %v", p["actual"])
	}
}

func TestCSVStatusWriter(t *testing.T) {
	out := writeToTemp(t, "status.csv", func(path string) error {
		return (&CSVStatusWriter{}).Write(statusReport(), OutputOptions{OutputPath: path})
	})

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d, want 2", len(records))
	}
	header, row := records[0], records[1]
	if len(header) != len(row) {
		t.Fatalf("header has %d columns, row has %d", len(header), len(row))
	}
	col := map[string]string{}
	for i, h := range header {
		col[h] = row[i]
	}
	if col["Repository"] != "acme/widgets" || col["CurrentSHA"] != "aaaa1111bbbb2222" {
		t.Errorf("row = %v", col)
	}
	if col["IdealCatchUp"] != "2025-07-20" || col["ActualCatchUp"] != "" {
		t.Errorf("catch-up columns = %q, %q", col["IdealCatchUp"], col["ActualCatchUp"])
	}
	if col["Preview"] != "applied" {
		t.Errorf("Preview = %q", col["Preview"])
	}
}

func TestMarkdownStatusWriter(t *testing.T) {
	out := writeToTemp(t, "status.md", func(path string) error {
		return (&MarkdownStatusWriter{}).Write(statusReport(), OutputOptions{OutputPath: path})
	})
	assertContains(t, out,
		"# acme/widgets",
		"**Position:** 10 / 30",
		"Add \\| pipes",
		"- `R` new.go",
		"## Pace",
		"| Actual (30-days) | 2.00 |",
		"## Warnings",
	)
}

func TestRepositoryListWriters(t *testing.T) {
	repos := []model.Repository{sampleRepository()}
	repos[0].Progress.CurrentSHA = "aaaa1111bbbb2222"
	report := &RepositoryListReport{GeneratedAt: sampleNow, Repositories: repos}

	t.Run("Console", func(t *testing.T) {
		out := writeToTemp(t, "list.txt", func(path string) error {
			return (&ConsoleRepositoryWriter{}).Write(report, OutputOptions{OutputPath: path})
		})
		assertContains(t, out, "Tracked Repositories", "acme/widgets", "aaaa1111", "20.00/day", "/src/widgets")
	})

	t.Run("ConsoleEmpty", func(t *testing.T) {
		out := writeToTemp(t, "list.txt", func(path string) error {
			return (&ConsoleRepositoryWriter{}).Write(&RepositoryListReport{}, OutputOptions{OutputPath: path})
		})
		assertContains(t, out, "No repositories registered")
	})

	t.Run("JSON", func(t *testing.T) {
		out := writeToTemp(t, "list.json", func(path string) error {
			return (&JSONRepositoryWriter{}).Write(report, OutputOptions{OutputPath: path})
		})
		var parsed JSONRepositoryList
		if err := json.Unmarshal([]byte(out), &parsed); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if parsed.Total != 1 || parsed.Repositories[0].Progress.CurrentSHA != "aaaa1111bbbb2222" {
			t.Errorf("parsed = %+v", parsed)
		}
	})

	t.Run("JSONEmptyIsArray", func(t *testing.T) {
		out := writeToTemp(t, "list.json", func(path string) error {
			return (&JSONRepositoryWriter{}).Write(&RepositoryListReport{}, OutputOptions{OutputPath: path})
		})
		assertContains(t, out, `"repositories": []`)
	})

	t.Run("CSV", func(t *testing.T) {
		out := writeToTemp(t, "list.csv", func(path string) error {
			return (&CSVRepositoryWriter{}).Write(report, OutputOptions{OutputPath: path})
		})
		records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 2 || records[1][1] != "acme/widgets" || records[1][7] != "30-days" {
			t.Errorf("records = %v", records)
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		out := writeToTemp(t, "list.md", func(path string) error {
			return (&MarkdownRepositoryWriter{}).Write(report, OutputOptions{OutputPath: path})
		})
		assertContains(t, out, "**Total:** 1", "| 1 | acme/widgets | main | `aaaa1111` | latest | 20.00 | 30-days | `/src/widgets` |")
	})
}

func TestChartWriters(t *testing.T) {
	report := chartReport()
	// Only the ideal pace outruns upstream: 20 remaining at a net 2/day.
	if len(report.Chart.Datasets) != 1 || len(report.Chart.Datasets[0].Points) != 11 {
		t.Fatalf("unexpected sample chart: %+v", report.Chart)
	}

	t.Run("CSV", func(t *testing.T) {
		out := writeToTemp(t, "chart.csv", func(path string) error {
			return (&CSVChartWriter{}).Write(report, OutputOptions{OutputPath: path})
		})
		records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 12 {
			t.Fatalf("rows = %d, want 12", len(records))
		}
		if records[1][0] != "Ideal Pace" || records[1][1] != "2025-07-10" || records[1][2] != "20.0000" {
			t.Errorf("first point = %v", records[1])
		}
		if last := records[len(records)-1]; last[1] != "2025-07-20" || last[2] != "0.0000" {
			t.Errorf("last point = %v", last)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		out := writeToTemp(t, "chart.json", func(path string) error {
			return (&JSONChartWriter{}).Write(report, OutputOptions{OutputPath: path})
		})
		var parsed struct {
			Repository string `json:"repository"`
			Datasets   []struct {
				Label string `json:"label"`
				Data  []struct {
					X string  `json:"x"`
					Y float64 `json:"y"`
				} `json:"data"`
			} `json:"datasets"`
		}
		if err := json.Unmarshal([]byte(out), &parsed); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if parsed.Repository != "acme/widgets" || len(parsed.Datasets) != 1 || parsed.Datasets[0].Label != "Ideal Pace" {
			t.Errorf("parsed = %+v", parsed)
		}
		if len(parsed.Datasets[0].Data) != 11 || parsed.Datasets[0].Data[0].Y != 20 {
			t.Errorf("data = %+v", parsed.Datasets[0].Data)
		}
	})

	t.Run("Console", func(t *testing.T) {
		out := writeToTemp(t, "chart.txt", func(path string) error {
			return (&ConsoleChartWriter{}).Write(report, OutputOptions{OutputPath: path})
		})
		assertContains(t, out, "Remaining commits: acme/widgets", "Ideal Pace (2.00/day)", "2025-07-20  0.0")
	})

	t.Run("MarkdownEmpty", func(t *testing.T) {
		empty := &ChartReport{GeneratedAt: sampleNow, Repository: sampleRepository()}
		out := writeToTemp(t, "chart.md", func(path string) error {
			return (&MarkdownChartWriter{}).Write(empty, OutputOptions{OutputPath: path})
		})
		assertContains(t, out, "No projection.")
	})

	t.Run("Markdown", func(t *testing.T) {
		out := writeToTemp(t, "chart.md", func(path string) error {
			return (&MarkdownChartWriter{}).Write(report, OutputOptions{OutputPath: path})
		})
		assertContains(t, out, "## Ideal Pace (2.00/day)", "| 2025-07-10 | 20.0 |", "| 2025-07-17 | 6.0 |", "| 2025-07-20 | 0.0 |")
	})
}
