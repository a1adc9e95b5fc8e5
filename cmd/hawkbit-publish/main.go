package main

import "github.com/foundriesio/hawkbit-publish/cmd/hawkbit-publish/cmd"

func main() {
	cmd.Execute()
}
