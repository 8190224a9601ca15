package main

import "blog-backend/cmd"

func main() {
	cmd.Run()
}
