package main

import "github.com/StinkyLord/snapcraft-sbom/cmd"

func main() {
	cmd.Execute()
}
