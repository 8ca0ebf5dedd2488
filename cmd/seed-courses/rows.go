package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// loadRows reads course rows from a .csv or .xlsx file. The first row is a
// header naming course fields ("code", "name", ...); unknown columns are ignored.
func loadRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(f)
	default:
		records, err = readCSV(f)
	}
	if err != nil {
		return nil, err
	}
	return toRows(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// readXLSX returns the rows of the first sheet.
func readXLSX(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return wb.GetRows(sheets[0])
}

var courseColumns = map[string]bool{
	"code": true, "name": true, "instructor": true, "semester": true, "schedule": true,
	"classroom": true, "prerequisites": true, "grading": true, "description": true,
}

func toRows(records [][]string) ([]map[string]string, error) {
	if len(records) == 0 {
		return nil, errors.New("file is empty")
	}

	header := make([]string, len(records[0]))
	known := 0
	for i, h := range records[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if courseColumns[key] {
			header[i] = key
			known++
		}
	}
	if known == 0 {
		return nil, errors.New("header row names no course fields")
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		fields := make(map[string]string, known)
		for i, key := range header {
			if key == "" || i >= len(rec) {
				continue
			}
			fields[key] = rec[i]
		}
		rows = append(rows, fields)
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
