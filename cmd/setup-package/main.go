package main

import "github.com/oshokin/setup-package/cmd/setup-package/cmd"

func main() {
	cmd.Execute()
}
