package main

import (
	"log"
	"os"

	"github.com/threadline/storefront/app/cmd"
	"github.com/threadline/storefront/app/configs"
)

func main() {
	env := configs.LoadEnv()
	if len(os.Args) > 1 {
		cmd.RunCli(env)
		return
	}

	if err := cmd.Serve(env); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}
