package main

import (
	"os"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
