package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"github.com/xuri/excelize/v2"
)

// ExportHeader is the column order of both export formats.
var ExportHeader = []string{"id", "name", "email", "phone", "registrationDate", "lastConsult", "totalConsults", "nextAppointment"}

const exportSheet = "Pacientes"

func exportRow(p patient.Patient) []string {
	return []string{
		p.ID.String(), p.Name, p.Email, p.Phone, p.RegistrationDate, p.LastConsult,
		strconv.Itoa(p.TotalConsults), p.NextAppointment,
	}
}

// WriteCSV writes the patient export with every value double-quoted.
// encoding/csv only quotes when needed, so quoting is done here.
func WriteCSV(w io.Writer, list []patient.Patient) error {
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, strings.Join(ExportHeader, ","))
	for _, p := range list {
		row := exportRow(p)
		for i, v := range row {
			row[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		lines = append(lines, strings.Join(row, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// XLSX renders the patient export as a single-sheet workbook.
func XLSX(list []patient.Patient) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	for col, h := range ExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, p := range list {
		row := i + 2
		for col, v := range exportRow(p) {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			var value any = v
			if ExportHeader[col] == "totalConsults" {
				value = p.TotalConsults
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
