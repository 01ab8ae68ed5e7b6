package config

import (
	stderrors "errors"
	"io/fs"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
)

// envFiles are tried in order; each one that exists is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads KEY=VALUE files into the process environment. Variables that are
// already set are never overwritten, and missing files are skipped.
func loadEnvFiles() error {
	for _, name := range envFiles {
		err := godotenv.Load(name)
		if err == nil || stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		return errors.WrapError(err, errors.CategoryConfig, "failed to load env file").WithContext("file", name).Build()
	}
	return nil
}
