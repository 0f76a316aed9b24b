package main

import "github.com/JeremyLoy/config"

// Config is the demo's env-driven tuning, grounded on cardinal's
// nakama/config.go FromEnv pattern.
type Config struct {
	WorldCapacity int  `config:"WORLD_CAPACITY"`
	Verbose       bool `config:"VERBOSE"`
}

func loadConfig() Config {
	cfg := Config{WorldCapacity: 16}
	if err := config.FromEnv().To(&cfg); err != nil {
		panic(err)
	}
	return cfg
}
