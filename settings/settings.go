// Package settings loads the optional YAML profile carrying store
// endpoint and pipeline tuning. Command line flags and environment
// variables override whatever the profile says.
package settings

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/Bitergia/grimoirelab-metrics/common"
	"github.com/Bitergia/grimoirelab-metrics/metrics"
	"github.com/Bitergia/grimoirelab-metrics/store"
)

type StoreSettings struct {
	URL            string `yaml:"url"`
	Index          string `yaml:"index"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	VerifyCerts    bool   `yaml:"verify-certs"`
	TimeoutSeconds int    `yaml:"timeout-seconds"`
}

type MetricsSettings struct {
	Workers int `yaml:"workers"`
}

type Settings struct {
	Store   StoreSettings   `yaml:"opensearch"`
	Metrics MetricsSettings `yaml:"metrics"`
}

var Global *Settings

func Defaults() *Settings {
	return &Settings{
		Store: StoreSettings{
			URL:            "http://localhost:9200",
			Index:          store.DefaultIndex,
			VerifyCerts:    true,
			TimeoutSeconds: int(store.DefaultTimeout.Seconds()),
		},
		Metrics: MetricsSettings{
			Workers: metrics.DefaultWorkers,
		},
	}
}

// Summon loads the profile at path over the defaults and publishes it
// as Global. A missing file with an empty path is fine; a named but
// unreadable or invalid profile is an error.
func Summon(path string) (*Settings, error) {
	result := Defaults()
	if len(path) > 0 {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.UnmarshalStrict(content, result); err != nil {
			return nil, err
		}
		common.Debug("Settings profile loaded from %q", path)
	}
	Global = result
	return result, nil
}
