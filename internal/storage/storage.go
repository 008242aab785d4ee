// Package storage persists articles, entities and tag counts. The file
// format follows the file extension.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uaenergy/news/pkg/models"
)

// Format is a storage file format
type Format string

const (
	FormatParquet  Format = "parquet"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "md"
)

// ErrUnsupportedFormat is returned for extensions a table cannot be written to
// or read from
var ErrUnsupportedFormat = errors.New("unsupported file format")

// listSeparator joins list columns in flat formats
const listSeparator = ";"

// FormatOf returns the format implied by the extension of path
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatParquet, FormatJSON, FormatCSV, FormatXLSX, FormatMarkdown:
		return Format(ext), nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Exists reports whether path is an existing regular file
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Save writes articles to path
func Save(path string, articles []models.Article) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatParquet:
		err = writeParquet(path, toArticleRows(articles))
	case FormatJSON:
		err = WriteJSON(path, articles)
	case FormatCSV:
		err = writeCSV(path, articleTable(articles))
	case FormatXLSX:
		err = writeXLSX(path, "articles", articleTable(articles))
	case FormatMarkdown:
		err = writeMarkdown(path, articles)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Load reads articles from a parquet or JSON file
func Load(path string) ([]models.Article, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var articles []models.Article
	switch format {
	case FormatParquet:
		var rows []articleRow
		rows, err = readParquet[articleRow](path)
		if err == nil {
			articles, err = fromArticleRows(rows)
		}
	case FormatJSON:
		err = readJSON(path, &articles)
	default:
		return nil, fmt.Errorf("%w: cannot load articles from %s files", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return articles, nil
}

// SaveEntities writes named entities to a parquet, JSON, CSV or XLSX file
func SaveEntities(path string, entities []models.NamedEntity) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatParquet:
		err = writeParquet(path, toEntityRows(entities))
	case FormatJSON:
		err = WriteJSON(path, entities)
	case FormatCSV:
		err = writeCSV(path, entityTable(entities))
	case FormatXLSX:
		err = writeXLSX(path, "entities", entityTable(entities))
	default:
		return fmt.Errorf("%w: cannot save entities as %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SaveTags writes tag counts to a parquet, JSON, CSV or XLSX file
func SaveTags(path string, tags []models.TagCount) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatParquet:
		err = writeParquet(path, toTagRows(tags))
	case FormatJSON:
		err = WriteJSON(path, tags)
	case FormatCSV:
		err = writeCSV(path, tagTable(tags))
	case FormatXLSX:
		err = writeXLSX(path, "tags", tagTable(tags))
	default:
		return fmt.Errorf("%w: cannot save tags as %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// replaceFile writes through a temporary file in the same directory so an
// existing dataset survives a failed write. The temporary name keeps the
// extension, which excelize checks.
func replaceFile(path string, write func(tmp string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*-"+filepath.Base(path))
	if err != nil {
		return err
	}
	name := tmp.Name()
	tmp.Close()

	if err := write(name); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
