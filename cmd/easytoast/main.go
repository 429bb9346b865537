// Package main provides the CLI entrypoint for easytoast.
package main

func main() {
	Execute()
}
