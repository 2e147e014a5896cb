package tools

import (
	"os"
	"path/filepath"
	"strings"
)

const TileExtension = ".i3dm"

type FileFinder interface {
	GetTilesToProcess(input string, recursive bool) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

// Returns the tiles designated by input. A url or a single file is returned as is, a folder is scanned
// for .i3dm files, eventually excluding nested folders if recursive is disabled.
func (f *StandardFileFinder) GetTilesToProcess(input string, recursive bool) ([]string, error) {
	if strings.Contains(input, "://") {
		return []string{input}, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	return f.getTilesFromInputFolder(input, info, recursive)
}

func (f *StandardFileFinder) getTilesFromInputFolder(input string, baseInfo os.FileInfo, recursive bool) ([]string, error) {
	var tiles = make([]string, 0)

	err := filepath.Walk(
		input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !recursive && !os.SameFile(info, baseInfo) {
				return filepath.SkipDir
			} else if !info.IsDir() && strings.ToLower(filepath.Ext(info.Name())) == TileExtension {
				tiles = append(tiles, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return tiles, nil
}
