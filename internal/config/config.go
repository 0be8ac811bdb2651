// Package config loads dotenv files before infra.LoadConfig reads the
// environment.
package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultFiles are read in order when no explicit file is given.
var DefaultFiles = []string{".env", ".env.local"}

// LoadEnv reads each file that exists and returns the ones it loaded.
// Variables already set in the process environment win over file values.
// A missing file is skipped; a malformed one is an error.
func LoadEnv(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = DefaultFiles
	}
	var loaded []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}
