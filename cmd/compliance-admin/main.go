// Command compliance-admin operates the compliance store from a terminal: scores, rules, alerts,
// audits, thresholds and the worst-first triage report.
// compliance-admin 命令行工具，直接操作合规数据。
package main

import (
	"github.com/turtacn/compliance/cmd/cli"
)

func main() {
	cli.Execute()
}
