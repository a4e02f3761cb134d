// Command dagchat is a terminal client for the Airflow LLM plugin.
package main

import "github.com/diogo/dagchat/internal/commands"

func main() {
	commands.Execute()
}
