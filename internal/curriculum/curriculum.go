// Package curriculum asks a language model for a lecture plan and stores it
// as a styled workbook plus a JSON file.
package curriculum

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/klytics/rpakit/internal/ai"
	"github.com/klytics/rpakit/internal/prompt"
	"github.com/klytics/rpakit/internal/workbook"
)

// SheetName is the title of the curriculum sheet.
const SheetName = "강의 커리큘럼"

const headerColor = "366092"

// Lecture is one session of the curriculum. Duration is in minutes.
type Lecture struct {
	Title    string      `json:"title"`
	Content  string      `json:"content"`
	Duration json.Number `json:"duration"`
}

// Curriculum is the plan returned by the model.
type Curriculum struct {
	Topic       string      `json:"topic"`
	Description string      `json:"description"`
	TotalHours  json.Number `json:"total_hours"`
	Lectures    []Lecture   `json:"lectures"`
}

// Request holds the generation inputs.
type Request struct {
	Topic       string
	Description string
	Hours       int
	Model       string
}

// Generate asks the provider for a curriculum in JSON mode and decodes it.
func Generate(ctx context.Context, p ai.Provider, req Request) (*Curriculum, error) {
	userPrompt, err := prompt.Curriculum(req.Topic, req.Description, req.Hours)
	if err != nil {
		return nil, err
	}

	res, err := ai.Ask(ctx, p, prompt.CurriculumSystem, userPrompt, ai.InferOptions{Model: req.Model, JSON: true})
	if err != nil {
		return nil, fmt.Errorf("curriculum generation failed: %w", err)
	}

	var c Curriculum
	if err := ai.DecodeJSON(res.Content, &c); err != nil {
		return nil, err
	}
	if len(c.Lectures) == 0 {
		return nil, fmt.Errorf("model returned a curriculum without lectures")
	}
	if c.Topic == "" {
		c.Topic = req.Topic
	}
	log.Debug().Str("topic", c.Topic).Int("lectures", len(c.Lectures)).Msg("curriculum generated")
	return &c, nil
}

// FileName returns curriculum_<topic>.xlsx with spaces replaced by underscores.
func FileName(topic string) string {
	return "curriculum_" + strings.ReplaceAll(topic, " ", "_") + ".xlsx"
}

// JSONPath returns the path of the JSON file saved next to an .xlsx path.
func JSONPath(xlsxPath string) string {
	return strings.TrimSuffix(xlsxPath, filepath.Ext(xlsxPath)) + ".json"
}

// Save writes the curriculum workbook to path and the JSON document next to
// it, returning the JSON path.
func Save(c *Curriculum, path string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("no curriculum data")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return "", fmt.Errorf("could not name sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("could not create header style: %w", err)
	}

	rows := map[int][]any{
		1: {"항목", "내용"},
		2: {"강의 주제", c.Topic},
		3: {"강의 설명", c.Description},
		4: {"총 강의 시간", c.TotalHours.String() + "시간"},
		6: {"강의 제목", "강의 내용", "소요 시간(분)"},
	}
	for i, l := range c.Lectures {
		rows[7+i] = []any{l.Title, l.Content, duration(l.Duration)}
	}

	widths := make(map[int]int)
	for r, values := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return "", fmt.Errorf("could not write row %d: %w", r, err)
		}
		for col, v := range values {
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[col+1] {
				widths[col+1] = n
			}
		}
	}

	if err := f.SetCellStyle(SheetName, "A1", "B1", header); err != nil {
		return "", fmt.Errorf("could not style header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A6", "C6", header); err != nil {
		return "", fmt.Errorf("could not style header: %w", err)
	}

	for col, w := range widths {
		name, _ := excelize.ColumnNumberToName(col)
		if err := f.SetColWidth(SheetName, name, name, float64(w+2)); err != nil {
			return "", fmt.Errorf("could not size column %s: %w", name, err)
		}
	}

	if err := workbook.Save(f, path); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not encode curriculum: %w", err)
	}
	jsonPath := JSONPath(path)
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", fmt.Errorf("could not write %s: %w", jsonPath, err)
	}

	log.Info().Str("xlsx", path).Str("json", jsonPath).Msg("curriculum saved")
	return jsonPath, nil
}

// duration keeps numeric minutes numeric in the sheet.
func duration(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
