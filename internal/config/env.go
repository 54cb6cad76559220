package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/rotisserie/eris"
)

// Env holds the process environment overrides.
type Env struct {
	GitHubToken string `envconfig:"GITHUB_TOKEN"`
	ConfigPath  string `envconfig:"TRENDING_CONFIG"`
}

// LoadEnv reads the overrides from the environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, eris.Wrap(err, "failed to read environment")
	}
	return env, nil
}

// Apply layers the overrides on top of s.
func (e Env) Apply(s Settings) Settings {
	if e.GitHubToken != "" {
		s.GitHub.Token = e.GitHubToken
	}
	return s
}
