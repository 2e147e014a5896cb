package tools

import (
	"os"
	"path/filepath"
)

func CreateDirectoryIfDoesNotExist(directory string) error {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		err := os.MkdirAll(directory, 0777)
		if err != nil {
			return err
		}
	}
	return nil
}

// Writes data to filePath, creating the parent folders first
func WriteFile(filePath string, data []byte) error {
	if err := CreateDirectoryIfDoesNotExist(filepath.Dir(filePath)); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0666)
}
