package main

import (
	"context"
	"fmt"
	"os"

	"taskList/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}
