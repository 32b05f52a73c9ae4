package main

import "github.com/yungbote/siteproof-backend/cmd/siteproofctl/cmd"

func main() {
	cmd.Execute()
}
