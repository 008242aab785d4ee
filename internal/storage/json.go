package storage

import (
	"encoding/json"
	"os"
)

// WriteJSON writes v as indented JSON to path
func WriteJSON(path string, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return replaceFile(path, func(tmp string) error {
		return os.WriteFile(tmp, append(content, '\n'), 0644)
	})
}

func readJSON(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(content, v)
}
