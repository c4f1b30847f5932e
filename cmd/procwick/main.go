package main

import (
	"github.com/Paintersrp/procwick/internal/cli"
	"github.com/Paintersrp/procwick/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
