// Package config loads exporter settings from defaults, an optional YAML file,
// the environment (including .env files) and command line flags.
//
// Precedence, highest first: flags, MFCEXPORT_* environment variables, .env
// files, the YAML config file, DefaultConfig.
//
//	cfg, err := config.Load("", map[string]interface{}{
//	    "output-dir":   "./exports",
//	    "on-ambiguous": config.OnAmbiguousSkip,
//	})
//
// Defaults need no configuration at all: the site is myfigurecollection.net,
// 90 items per listing page, output in the working directory.
package config
