// ./main.go
package main

import (
	"github.com/bigid-apps/quickstart/cmd"
)

func main() {
	cmd.Execute()
}
