package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/xuri/excelize/v2"

	"github.com/iWorld-y/pine_pulse/internal/config"
	"github.com/iWorld-y/pine_pulse/internal/logger"
	"github.com/iWorld-y/pine_pulse/internal/model"
)

const (
	ReasonDatasetNotFound    = "DATASET_NOT_FOUND"
	ReasonUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ReasonEmptyDatasetHeader = "EMPTY_HEADER"
)

// LoadPreset 加载配置中的预置数据集
func LoadPreset(cfg *config.Config, name string) (*model.Table, error) {
	d, ok := cfg.Dataset(name)
	if !ok {
		return nil, errors.NotFound(ReasonDatasetNotFound, fmt.Sprintf("dataset %q is not configured", name))
	}
	t, err := LoadFile(d.Path)
	if err != nil {
		return nil, err
	}
	t.Name = d.Name
	return t, nil
}

// LoadFile 从本地文件加载数据集
func LoadFile(path string) (*model.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return LoadBytes(filepath.Base(path), data)
}

// LoadBytes 根据文件扩展名解析上传的数据
func LoadBytes(filename string, data []byte) (*model.Table, error) {
	var (
		t   *model.Table
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		t, err = parseCSV(data)
	case ".xlsx":
		t, err = parseXLSX(data)
	default:
		return nil, errors.BadRequest(ReasonUnsupportedFormat, fmt.Sprintf("unsupported dataset format: %s", filename))
	}
	if err != nil {
		return nil, err
	}
	t.Name = strings.TrimSuffix(filename, filepath.Ext(filename))
	logger.Log.Debugf("数据集 [%s] 已加载: %d 列, %d 行", t.Name, len(t.Columns), len(t.Rows))
	return t, nil
}

func parseCSV(data []byte) (*model.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var records [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Log.Debugf("跳过格式错误的 CSV 行: %v", err)
			continue
		}
		records = append(records, row)
	}
	return buildTable(headers, records)
}

func parseXLSX(data []byte) (*model.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.BadRequest(ReasonEmptyDatasetHeader, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.BadRequest(ReasonEmptyDatasetHeader, "sheet has no header row")
	}
	return buildTable(rows[0], rows[1:])
}

// buildTable 去除表头空白，短行补空字符串
func buildTable(headers []string, records [][]string) (*model.Table, error) {
	columns := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	if len(columns) == 0 || (len(columns) == 1 && columns[0] == "") {
		return nil, errors.BadRequest(ReasonEmptyDatasetHeader, "dataset has no columns")
	}

	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return &model.Table{Columns: columns, Rows: rows}, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
