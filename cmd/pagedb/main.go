// Package main is a minimal, non-interactive front end for pagedb: it runs
// one SQL string or one script file against a base directory and exits.
// There is no REPL, no dot-commands, and no history — those are explicitly
// outside this engine's scope; exit behavior and result formatting belong
// to whatever wraps this binary.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cabewaldrop/pagedb/internal/dbms"
	"github.com/cabewaldrop/pagedb/internal/executor"
	"github.com/cabewaldrop/pagedb/internal/sql/lexer"
	"github.com/cabewaldrop/pagedb/internal/sql/parser"
)

func main() {
	baseDir := flag.String("dir", "pagedb-data", "Base directory holding every database")
	query := flag.String("e", "", "A single SQL statement to run")
	flag.Parse()

	engine, err := dbms.Open(*baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening %s: %v\n", *baseDir, err)
		os.Exit(1)
	}
	exec := executor.New(engine)

	var source string
	switch {
	case *query != "":
		source = *query
	case flag.NArg() == 1:
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading %s: %v\n", flag.Arg(0), err)
			os.Exit(1)
		}
		source = string(data)
	default:
		fmt.Fprintln(os.Stderr, "usage: pagedb -dir <base_dir> (-e \"SQL;\" | script.sql)")
		os.Exit(1)
	}

	code := run(exec, source)
	if err := engine.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "error saving databases: %v\n", err)
		code = 1
	}
	os.Exit(code)
}

// run executes every ';'-separated statement in source in order, printing
// each Result, and stops at the first error.
func run(exec *executor.Executor, source string) int {
	for _, stmt := range splitStatements(source) {
		if stmt == "" {
			continue
		}
		l := lexer.New(stmt)
		p := parser.New(l)
		parsed, err := p.Parse()
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
			return 1
		}
		result, err := exec.Execute(parsed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Print(result.String())
	}
	return 0
}

// splitStatements breaks source on top-level ';' separators. It does not
// understand string literals containing ';'; the grammar's string escape
// is a doubled quote, not a backslash, so this simple split is adequate
// for the script files this entrypoint runs.
func splitStatements(source string) []string {
	var stmts []string
	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		current.WriteString(line)
		current.WriteString("\n")
	}
	for _, part := range strings.Split(current.String(), ";") {
		stmts = append(stmts, strings.TrimSpace(part))
	}
	return stmts
}
