package executor

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/EgorDm/nauman/pkg/core"
)

// loadDotenv reads the configured dotenv file at run start. The file must
// exist and parse: a broken dotenv is fatal before any task runs.
func loadDotenv(path string) (core.Env, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load dotenv file %s", path)
	}
	return core.Env(vars), nil
}

// readTaskOutput parses the KEY=VALUE lines a task wrote into its output
// file. The grammar is the dotenv grammar. A missing or empty file means the
// task had nothing to export; malformed contents are fatal.
func readTaskOutput(path string) (core.Env, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat task output file %s", path)
	}
	if info.Size() == 0 {
		return nil, nil
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse task output file %s", path)
	}
	return core.Env(vars), nil
}
