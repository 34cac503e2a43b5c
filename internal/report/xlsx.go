package report

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const sheet = "Inventory"

// WriteXLSX writes the inventory as a spreadsheet for moving companies that
// want to work the list in Excel rather than print it.
func WriteXLSX(w io.Writer, data *Data) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close spreadsheet", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{"Room", "Item", "Qty", "Unit volume (cu ft)", "Unit weight (lb)", "Estimated", "Going", "Found in photo"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	for _, group := range data.Rooms {
		for _, item := range group.Items {
			values := []any{
				group.Room, item.Name, item.Quantity, item.Volume, item.Weight,
				item.Estimated, item.IsGoing, item.FoundInImage,
			}
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return fmt.Errorf("failed to build cell name: %w", err)
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return fmt.Errorf("failed to write row: %w", err)
				}
			}
			row++
		}
	}

	// Summary block below the listing.
	row++
	summary := [][]any{
		{"Safety factor", data.Session.SafetyFactor},
		{"Total items", data.Totals.TotalItems},
		{"Total volume (cu ft)", data.Totals.TotalVolume},
		{"Total weight (lb)", data.Totals.TotalWeight},
	}
	for _, pair := range summary {
		for col, v := range pair {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}
		}
		row++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}
