// Package export renders transaction rows into a spreadsheet for ops
// reconciliation.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
)

const sheetName = "Transactions"

var header = []string{
	"Record ID", "Group ID", "Brand", "Date", "Time", "Reference",
	"Latitude", "Longitude", "Accuracy (m)", "Location source",
	"Storage key", "Checksum", "Status", "Driver copy sent", "Created at",
}

// Write streams an xlsx workbook with one row per transaction.
func Write(w io.Writer, recs []model.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return err
		}
	}

	for i, rec := range recs {
		row := i + 2

		var lat, lon, acc interface{}
		if ch := rec.Location.Chosen; ch != nil {
			lat, lon = ch.Lat, ch.Lon
			if ch.Accuracy != nil {
				acc = *ch.Accuracy
			}
		}

		values := []interface{}{
			rec.RecordID, rec.GroupID, rec.BrandSlug, rec.UploadDate,
			rec.UploadTime, rec.Reference, lat, lon, acc,
			string(rec.PresentedLabel), rec.StorageKey, rec.FileChecksum,
			string(rec.ProcessStatus), rec.DriverCopySent,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
