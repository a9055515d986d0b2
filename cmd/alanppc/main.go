// Command alanppc is the Alan++ compiler's command-line front end: a thin
// wrapper that reads a source file and prints the text sinks spec'd for
// every sub-program it contains (the machine-code sink only for
// sub-programs that reached code generation), mirroring the teacher compiler's
// main/main_cpq1.go shape (read file, run the pipeline, report to stdout).
package main

import (
	"fmt"
	"os"

	"github.com/alanpp/alanppc/internal/driver"
)

func main() {
	fmt.Fprintln(os.Stderr, "alanppc - Alan++ compiler")
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "USAGE: alanppc <input-file>")
		os.Exit(1)
	}

	src, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read input file: %v\n", err)
		os.Exit(1)
	}

	results := driver.Run(string(src))
	for i, sp := range results {
		fmt.Printf("===== sub-program %d =====\n", i+1)
		fmt.Println("--- lexer log ---")
		fmt.Println(sp.LexerSink(false))
		fmt.Println("--- parser log + CST ---")
		fmt.Println(sp.ParserSink(false))
		fmt.Println("--- semantic log + AST + symbols ---")
		fmt.Println(sp.SemanticSink(false))
		if sp.CodeRan {
			fmt.Println("--- machine code + memory map ---")
			fmt.Println(sp.CodeSink())
		}
	}
}
