package configuration

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// GodotenvProvider reads KEY=VALUE configuration files with godotenv.
type GodotenvProvider struct{}

// Read parses the given files into one map (map[key]value), later files
// taking precedence. The environment of the process is left untouched.
func (*GodotenvProvider) Read(filenames ...string) (map[string]string, error) {
	envMap := make(map[string]string)

	for _, filename := range filenames {
		file, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("(config-godotenv) %w", err)
		}

		values, err := godotenv.Parse(file)
		file.Close()

		if err != nil {
			return nil, fmt.Errorf("(config-godotenv) failed to parse %s: %w", filename, err)
		}

		for k, v := range values {
			envMap[k] = v
		}
	}

	return envMap, nil
}
