// Package config provides configuration structures and utilities for the
// researcher CLI. It defines the defaults for language model providers,
// web search, scraping, concurrency and report output, together with the
// optional YAML configuration file that can override them.
package config
