// Package config resolves run configuration from viper-bound flags, the
// config file, and the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Viper keys for the artifact paths of a matching run.
const (
	KeyDataDir   = "data_dir"
	KeyMaster    = "master"
	KeyExport    = "export"
	KeyMasterOut = "master_out"
	KeyMatched   = "matched"
	KeyUnmatched = "unmatched"
	KeySchema    = "schema"
)

// SetDefaults installs the default artifact names. Relative names are
// resolved under the data directory.
func SetDefaults() {
	viper.SetDefault(KeyDataDir, ".")
	viper.SetDefault(KeyMaster, "registration.csv")
	viper.SetDefault(KeyExport, "export.csv")
	viper.SetDefault(KeyMasterOut, "nlc_main.csv")
	viper.SetDefault(KeyMatched, "export_matched_to_nlc.csv")
	viper.SetDefault(KeyUnmatched, "export_still_not_in_nlc.csv")
	viper.SetDefault(KeySchema, "")
}

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// Paths holds the resolved artifact locations for a run.
type Paths struct {
	Master    string
	Export    string
	MasterOut string
	Matched   string
	Unmatched string
	Schema    string
}

// Resolve reads the configured artifact names and anchors relative ones
// under the data directory.
func Resolve() Paths {
	dataDir := viper.GetString(KeyDataDir)
	return Paths{
		Master:    anchor(dataDir, viper.GetString(KeyMaster)),
		Export:    anchor(dataDir, viper.GetString(KeyExport)),
		MasterOut: anchor(dataDir, viper.GetString(KeyMasterOut)),
		Matched:   anchor(dataDir, viper.GetString(KeyMatched)),
		Unmatched: anchor(dataDir, viper.GetString(KeyUnmatched)),
		Schema:    anchorOptional(dataDir, viper.GetString(KeySchema)),
	}
}

// Anchor resolves a single artifact name under the configured data
// directory, for flag-supplied paths.
func Anchor(name string) string {
	return anchor(viper.GetString(KeyDataDir), name)
}

func anchor(dataDir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dataDir, name)
}

func anchorOptional(dataDir, name string) string {
	if name == "" {
		return ""
	}
	return anchor(dataDir, name)
}
