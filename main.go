package main

import "github.com/SAP-F-2025/lms-service/cmd"

func main() {
	cmd.Execute()
}
