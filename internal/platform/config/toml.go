package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// LoadTOML decodes the TOML file at path into v. Keys in the file that v does not declare
// are rejected so typos surface instead of silently keeping defaults.
func LoadTOML(path string, v any) error {
	md, err := toml.DecodeFile(path, v)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("decode %s: unknown keys %v", path, undecoded)
	}
	return nil
}
