package main

import (
	"mycase-search/cmd/mycase/commands"
	"mycase-search/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
