package main

import "photo-social-backend/cmd"

func main() {
	cmd.Execute()
}
