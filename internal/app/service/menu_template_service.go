package service

import (
	"bytes"
	"fmt"

	"github.com/medikart/medikart-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const menuSheetName = "Menu"

var menuTemplateColumns = []struct {
	header string
	width  float64
}{
	{"Item Name", 30},
	{"Category", 18},
	{"Manufacturer", 24},
	{"Pack Size", 14},
	{"MRP (INR)", 12},
	{"Selling Price (INR)", 16},
	{"Prescription Required (Y/N)", 24},
	{"In Stock (Y/N)", 14},
}

// MenuTemplateService builds the spreadsheet merchants fill out and upload
// as their reference menu (the SHEET media source).
type MenuTemplateService interface {
	BuildTemplate() (*bytes.Buffer, error)
}

type menuTemplateService struct{}

func NewMenuTemplateService() MenuTemplateService {
	return &menuTemplateService{}
}

func (s *menuTemplateService) BuildTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close menu template workbook", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	index, err := f.NewSheet(menuSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range menuTemplateColumns {
		name, colErr := excelize.ColumnNumberToName(i + 1)
		if colErr != nil {
			return nil, colErr
		}
		cell := fmt.Sprintf("%s1", name)
		if err := f.SetCellValue(menuSheetName, cell, col.header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(menuSheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(menuSheetName, name, name, col.width); err != nil {
			return nil, err
		}
	}

	// One example row so merchants see the expected format
	example := []interface{}{"Paracetamol 500mg", "Medicine", "Acme Pharma", "Strip of 15", 32.5, 30.0, "N", "Y"}
	for i, v := range example {
		name, colErr := excelize.ColumnNumberToName(i + 1)
		if colErr != nil {
			return nil, colErr
		}
		if err := f.SetCellValue(menuSheetName, fmt.Sprintf("%s2", name), v); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}
