// Package config loads the YAML configuration shared by the server
// and the ingestion tool. Missing files fall back to defaults;
// secrets come from the environment, optionally seeded from a .env
// file.
package config
