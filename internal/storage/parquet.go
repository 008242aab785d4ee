package storage

import (
	"github.com/parquet-go/parquet-go"
)

func writeParquet[T any](path string, rows []T) error {
	return replaceFile(path, func(tmp string) error {
		return parquet.WriteFile(tmp, rows)
	})
}

func readParquet[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}
