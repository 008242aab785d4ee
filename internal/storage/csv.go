package storage

import (
	"encoding/csv"
	"os"
)

// writeCSV writes a header row followed by the table rows
func writeCSV(path string, t table) error {
	return replaceFile(path, func(tmp string) error {
		file, err := os.Create(tmp)
		if err != nil {
			return err
		}
		defer file.Close()

		writer := csv.NewWriter(file)
		if err := writer.Write(t.header); err != nil {
			return err
		}
		if err := writer.WriteAll(t.rows); err != nil {
			return err
		}
		return file.Close()
	})
}
