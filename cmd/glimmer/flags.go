package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func validateEnhanceOptions(opts enhanceOptions) error {
	if err := validateConfigPath(opts.ConfigPath); err != nil {
		return err
	}

	if opts.InputPath != "" && opts.InputPath != "-" {
		info, err := os.Stat(opts.InputPath)
		if err != nil {
			return fmt.Errorf("input file does not exist: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("input path %s is a directory", opts.InputPath)
		}
	}

	return nil
}

func validateConfigPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config file is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("config file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", abs)
	}

	return nil
}
