package options

import (
	"regexp"

	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"
)

func EntraSearchPattern() cfg.Param {
	return cfg.NewParam[string]("pattern", "Shell-style pattern to match against display names (* and ? wildcards, case-insensitive)").
		WithShortcode("p").
		AsRequired()
}

func EntraSearchDimension() cfg.Param {
	return cfg.NewParam[string]("dimension", "Entity dimension to search: group, user, app, role, or country").
		WithShortcode("d").
		WithDefault("group").
		WithRegex(regexp.MustCompile("^(group|user|app|role|country)$"))
}

func EntraSearchScope() cfg.Param {
	return cfg.NewParam[string]("scope", "Which side of the policy to search: include, exclude, or both").
		WithDefault("both").
		WithRegex(regexp.MustCompile("^(include|exclude|both)$"))
}

func EntraPolicyFile() cfg.Param {
	return cfg.NewParam[string]("policy-file", "Path to a previously exported conditional access JSON file; omit to collect live").
		WithShortcode("f")
}

func EntraWorkerCount() cfg.Param {
	return cfg.NewParam[int]("workers", "Number of concurrent workers").
		WithShortcode("w").
		WithDefault(5)
}

func EntraExpiryThresholdDays() cfg.Param {
	return cfg.NewParam[int]("threshold-days", "Report credentials expiring within this many days (already expired always included)").
		WithDefault(30)
}

func EntraStaleGuestDays() cfg.Param {
	return cfg.NewParam[int]("stale-days", "Consider guests stale when invited more than this many days ago and still pending acceptance").
		WithDefault(90)
}

func EntraRemoveGuests() cfg.Param {
	return cfg.NewParam[bool]("remove", "Delete the stale guests found instead of only reporting them").
		WithDefault(false)
}

func OutputDir() cfg.Param {
	return cfg.NewParam[string]("output", "Directory to write output files to").
		WithShortcode("o").
		WithDefault("entrascope-output")
}
