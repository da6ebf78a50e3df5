package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk YAML shape. Durations are given in seconds so
// the file stays plain YAML scalars.
type fileConfig struct {
	Weights *Weights `yaml:"weights"`

	RRFK         *float64 `yaml:"rrfK"`
	ClusterSeedN *int     `yaml:"clusterSeedN"`
	ClusterBoost *float64 `yaml:"clusterBoost"`
	TraceBoost   *float64 `yaml:"traceBoost"`

	BM25K1 *float64 `yaml:"bm25K1"`
	BM25B  *float64 `yaml:"bm25B"`

	CacheTTLSeconds     *int `yaml:"cacheTTLSeconds"`
	CacheSize           *int `yaml:"cacheSize"`
	EmbedTimeoutSeconds *int `yaml:"embedTimeoutSeconds"`

	Synonyms [][]string        `yaml:"synonyms"`
	Clusters map[string]string `yaml:"clusters"`
}

// Load returns the default configuration overridden by the YAML file at
// path. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Weights != nil {
		cfg.Weights = *fc.Weights
	}
	if fc.RRFK != nil {
		cfg.RRFK = *fc.RRFK
	}
	if fc.ClusterSeedN != nil {
		cfg.ClusterSeedN = *fc.ClusterSeedN
	}
	if fc.ClusterBoost != nil {
		cfg.ClusterBoost = *fc.ClusterBoost
	}
	if fc.TraceBoost != nil {
		cfg.TraceBoost = *fc.TraceBoost
	}
	if fc.BM25K1 != nil {
		cfg.BM25K1 = *fc.BM25K1
	}
	if fc.BM25B != nil {
		cfg.BM25B = *fc.BM25B
	}
	if fc.CacheTTLSeconds != nil {
		cfg.CacheTTL = time.Duration(*fc.CacheTTLSeconds) * time.Second
	}
	if fc.CacheSize != nil {
		cfg.CacheSize = *fc.CacheSize
	}
	if fc.EmbedTimeoutSeconds != nil {
		cfg.EmbedTimeout = time.Duration(*fc.EmbedTimeoutSeconds) * time.Second
	}
	if len(fc.Synonyms) > 0 {
		cfg.Synonyms = append(cfg.Synonyms, fc.Synonyms...)
	}
	if len(fc.Clusters) > 0 {
		for name, cluster := range fc.Clusters {
			cfg.Clusters[name] = cluster
		}
	}

	return cfg, nil
}

// DefaultPath returns ~/.capsearch/config.yaml, or "" if the home
// directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".capsearch", "config.yaml")
}
