// Package config loads env-tagged structs with caarlos0/env, reading a local
// .env file through godotenv first.
//
//	var cfg signup.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
