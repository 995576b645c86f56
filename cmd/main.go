package main

import (
	"github.com/teamspeak-exporter/cmd/agent"
)

func main() {
	agent.Execute()
}
