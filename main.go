package main

import "inkwell/service"

func main() {
	service.Execute()
}
