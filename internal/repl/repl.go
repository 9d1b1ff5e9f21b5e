package repl

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/tj-mc/tilde-sub001/internal/evaluator"
	"github.com/tj-mc/tilde-sub001/internal/object"
	"github.com/tj-mc/tilde-sub001/internal/parser"
	"github.com/tj-mc/tilde-sub001/internal/util"
)

const (
	prompt         = "> "
	continuePrompt = "... "
)

// Start runs the interactive loop. The evaluator persists across inputs, so
// variables and actions defined earlier stay available.
func Start(config util.Configuration) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if config.HistoryPath != "" {
		if f, err := os.Open(config.HistoryPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer saveHistory(line, config.HistoryPath)

	ev := evaluator.New(config)
	fmt.Printf("tilde %s\n", config.Version)
	fmt.Println("Type 'exit' to leave.")

	var buffer strings.Builder
	for {
		p := prompt
		if buffer.Len() > 0 {
			p = continuePrompt
		}

		input, err := line.Prompt(p)
		if err == liner.ErrPromptAborted {
			buffer.Reset()
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			slog.Error("reading input", slog.Any("error", err))
			return
		}

		if buffer.Len() == 0 && strings.TrimSpace(input) == "exit" {
			return
		}

		buffer.WriteString(input)
		buffer.WriteString("\n")
		src := buffer.String()
		if OpenDelimiters(src) > 0 {
			continue
		}
		buffer.Reset()

		if strings.TrimSpace(src) == "" {
			continue
		}
		line.AppendHistory(strings.TrimSpace(strings.ReplaceAll(src, "\n", " ")))

		evalAndPrint(ev, src)
	}
}

func evalAndPrint(ev *evaluator.Evaluator, src string) {
	p := parser.New(src)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, msg := range errs {
			fmt.Println("Parse error: " + msg)
		}
		return
	}

	result := ev.Eval(program)
	if result == nil {
		return
	}
	if errObj, ok := result.(*object.Error); ok {
		fmt.Println("Runtime error: " + errObj.Message)
		return
	}
	if _, ok := result.(*object.Null); ok {
		return
	}
	fmt.Println(result.Inspect())
}

// OpenDelimiters counts unclosed parens, brackets, and braces outside of
// string literals and comments. A positive count means the input continues
// on the next line. An unterminated string also keeps the input open.
func OpenDelimiters(src string) int {
	depth := 0
	inString := false
	inComment := false
	escaped := false
	for _, ch := range src {
		if inComment {
			if ch == '\n' {
				inComment = false
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '#':
			inComment = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	if inString {
		return depth + 1
	}
	return depth
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("could not save history", slog.String("path", path), slog.Any("error", err))
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
