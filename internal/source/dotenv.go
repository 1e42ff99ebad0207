package source

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

type dotenv struct {
	path     string
	optional bool
}

// Dotenv reads a .env file without exporting it into the process
// environment.  Keys are taken as written, so APPSETTINGS__SOMEKEY=x lands on
// appsettings.somekey.
func Dotenv(path string, optional bool) Provider {
	return &dotenv{path: path, optional: optional}
}

func (d *dotenv) Name() string { return "dotenv:" + d.path }

func (d *dotenv) ReadAll(context.Context) (map[string]string, error) {
	if _, err := os.Stat(d.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && d.optional {
			return map[string]string{}, nil
		}
		return nil, Unavailable(d.Name(), err)
	}
	kv, err := godotenv.Read(d.path)
	if err != nil {
		return nil, Unavailable(d.Name(), err)
	}
	return kv, nil
}
