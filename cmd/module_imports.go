package cmd

// import modules so their init() functions are called

import (
	_ "github.com/entrascope/entrascope/pkg/modules/entra/hygiene"
	_ "github.com/entrascope/entrascope/pkg/modules/entra/recon"
	_ "github.com/entrascope/entrascope/pkg/modules/entra/report"
)
