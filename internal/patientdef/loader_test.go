package patientdef_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PochariChun/OSCEVP/internal/patientdef"
	"github.com/PochariChun/OSCEVP/internal/scoring"
)

const jsonBundle = `{
  "name": "張小弟 - 發燒腹瀉",
  "description": "3歲男童，發燒合併腹瀉兩天",
  "dialog": [
    {"question": "你好", "answer": "護理師好。"}
  ],
  "rubric": [
    {
      "類別": "病人辨識",
      "滿分": 4,
      "項目": [
        {"項目": "確認床號", "配分": 2, "關鍵詞": ["床號"]},
        {"項目": "核對手圈", "配分": 2, "關鍵詞": ["手圈"]}
      ]
    }
  ]
}`

const yamlBundle = `name: Fever case
description: practice case
dialog:
  - question: hello
    answer: hi there
rubric:
  categories:
    - name: Identification
      max_score: 2
      items:
        - name: Confirm bed number
          max_score: 2
          keywords: ["bed number"]
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoad_JSONLocalized(t *testing.T) {
	p := write(t, t.TempDir(), "patient.json", jsonBundle)
	pt, err := patientdef.Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pt.ID != "張小弟 - 發燒腹瀉" {
		t.Fatalf("id = %q", pt.ID)
	}
	if len(pt.Rubric.Categories) != 1 || pt.Rubric.Categories[0].MaxScore != 4 {
		t.Fatalf("rubric = %+v", pt.Rubric)
	}
	if pt.Rubric.Categories[0].Items[1].Keywords[0] != "手圈" {
		t.Fatal("localized item keywords lost")
	}
}

func TestLoad_YAML(t *testing.T) {
	p := write(t, t.TempDir(), "patient.yaml", yamlBundle)
	pt, err := patientdef.Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pt.Name != "Fever case" || len(pt.Dialog) != 1 {
		t.Fatalf("patient = %+v", pt)
	}
	if pt.Rubric.Categories[0].Items[0].Keywords[0] != "bed number" {
		t.Fatal("yaml rubric keywords lost")
	}
}

func TestLoad_RejectsInvalidRubric(t *testing.T) {
	bad := `{
  "name": "broken",
  "rubric": [
    {"類別": "病人辨識", "滿分": 9, "項目": [{"項目": "確認床號", "配分": 2}]}
  ]
}`
	p := write(t, t.TempDir(), "bad.json", bad)
	_, err := patientdef.Load(p)
	var cfgErr *scoring.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.json", jsonBundle)
	write(t, dir, "b.yaml", yamlBundle)
	write(t, dir, "notes.txt", "ignored")

	ps, err := patientdef.LoadDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("loaded %d patients, want 2", len(ps))
	}
}
