package scoring

import (
	"encoding/json"
	"fmt"
)

// Persisted rubric documents and rendered results use the bilingual
// field names of the original paper grading sheets (類別/項目/配分/細項,
// alongside their english spellings). The engine's model keeps a single
// canonical naming; translation happens here, at the serialization
// boundary, and nowhere inside the core.

// DecodeRubric parses a rubric document. The top level may be either a
// bare category array or an object with a "categories" field; category
// and item objects may use canonical or localized keys.
func DecodeRubric(data []byte) (Rubric, error) {
	var cats []json.RawMessage
	if err := json.Unmarshal(data, &cats); err != nil {
		var doc struct {
			Categories []json.RawMessage `json:"categories"`
		}
		if err2 := json.Unmarshal(data, &doc); err2 != nil || doc.Categories == nil {
			return Rubric{}, fmt.Errorf("rubric document: expected category array or {categories:[...]}")
		}
		cats = doc.Categories
	}

	r := Rubric{Categories: make([]Category, 0, len(cats))}
	for i, raw := range cats {
		c, err := decodeCategory(raw)
		if err != nil {
			return Rubric{}, fmt.Errorf("category %d: %w", i, err)
		}
		r.Categories = append(r.Categories, c)
	}
	return r, nil
}

func decodeCategory(raw json.RawMessage) (Category, error) {
	m, err := objectFields(raw)
	if err != nil {
		return Category{}, err
	}
	c := Category{
		Name:     strField(m, "name", "類別"),
		MaxScore: numField(m, "max_score", "滿分"),
	}
	items, ok := rawField(m, "items", "項目")
	if !ok {
		return Category{}, fmt.Errorf("category %q: missing items", c.Name)
	}
	var itemRaws []json.RawMessage
	if err := json.Unmarshal(items, &itemRaws); err != nil {
		return Category{}, fmt.Errorf("category %q: items: %w", c.Name, err)
	}
	for i, ir := range itemRaws {
		it, err := decodeItem(ir)
		if err != nil {
			return Category{}, fmt.Errorf("category %q item %d: %w", c.Name, i, err)
		}
		c.Items = append(c.Items, it)
	}
	return c, nil
}

func decodeItem(raw json.RawMessage) (Item, error) {
	m, err := objectFields(raw)
	if err != nil {
		return Item{}, err
	}
	return Item{
		Name:        strField(m, "name", "項目"),
		MaxScore:    numField(m, "max_score", "配分"),
		SubCriteria: strsField(m, "sub_criteria", "細項"),
		Keywords:    strsField(m, "keywords", "關鍵詞"),
	}, nil
}

func objectFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("expected object: %w", err)
	}
	return m, nil
}

func rawField(m map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func strField(m map[string]json.RawMessage, keys ...string) string {
	raw, ok := rawField(m, keys...)
	if !ok {
		return ""
	}
	var s string
	_ = json.Unmarshal(raw, &s)
	return s
}

func numField(m map[string]json.RawMessage, keys ...string) float64 {
	raw, ok := rawField(m, keys...)
	if !ok {
		return 0
	}
	var v float64
	_ = json.Unmarshal(raw, &v)
	return v
}

func strsField(m map[string]json.RawMessage, keys ...string) []string {
	raw, ok := rawField(m, keys...)
	if !ok {
		return nil
	}
	var out []string
	_ = json.Unmarshal(raw, &out)
	return out
}

// Display shapes: what the result page consumes. Keys mirror the
// original grading sheet so the frontend renders them untouched.

type DisplayItem struct {
	Name        string   `json:"項目"`
	MaxScore    float64  `json:"配分"`
	Score       float64  `json:"得分"`
	Completed   bool     `json:"完成"`
	SubCriteria []string `json:"細項,omitempty"`
	Matched     []string `json:"命中細項,omitempty"`
}

type DisplayCategory struct {
	Name     string        `json:"類別"`
	Score    float64       `json:"總分"`
	MaxScore float64       `json:"滿分"`
	Items    []DisplayItem `json:"項目"`
}

type DisplayResult struct {
	TotalScore  float64           `json:"totalScore"`
	MaxScore    float64           `json:"maxScore"`
	Categories  []DisplayCategory `json:"categories"`
	EvaluatedAt string            `json:"evaluatedAt,omitempty"`
}

// NewDisplayResult converts an EvaluationResult into the localized
// display document.
func NewDisplayResult(res EvaluationResult) DisplayResult {
	out := DisplayResult{
		TotalScore: res.TotalScore,
		MaxScore:   res.MaxScore,
		Categories: make([]DisplayCategory, 0, len(res.Categories)),
	}
	if !res.EvaluatedAt.IsZero() {
		out.EvaluatedAt = res.EvaluatedAt.Format("2006-01-02")
	}
	for _, cr := range res.Categories {
		dc := DisplayCategory{
			Name:     cr.Name,
			Score:    cr.Score,
			MaxScore: cr.MaxScore,
			Items:    make([]DisplayItem, 0, len(cr.Items)),
		}
		for _, ir := range cr.Items {
			dc.Items = append(dc.Items, DisplayItem{
				Name:        ir.Item.Name,
				MaxScore:    ir.Item.MaxScore,
				Score:       ir.Score,
				Completed:   ir.Completed,
				SubCriteria: ir.Item.SubCriteria,
				Matched:     ir.MatchedSubCriteria,
			})
		}
		out.Categories = append(out.Categories, dc)
	}
	return out
}
