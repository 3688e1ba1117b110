package engine

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Stepper drives an Engine line by line from a command stream. It is the
// terminal front end for stepping: one command per input line, output to a
// single writer.
type Stepper struct {
	eng *Engine

	in          *bufio.Scanner
	out         io.Writer
	interactive bool

	quit bool
}

// StepperResult contains the result of a stepper session.
type StepperResult struct {
	Outcome RunOutcome
	Quit    bool
}

// NewStepper creates a Stepper reading commands from in and writing to out.
// Interactive mode prints a prompt before each command.
func NewStepper(eng *Engine, in io.Reader, out io.Writer, interactive bool) *Stepper {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	return &Stepper{
		eng:         eng,
		in:          bufio.NewScanner(in),
		out:         out,
		interactive: interactive,
	}
}

// Run executes the stepper session. It advances to the first line, then
// reads commands until the run completes, input ends, or the user quits.
func (s *Stepper) Run() (StepperResult, error) {
	res, err := s.eng.StepNext()
	if err != nil {
		return StepperResult{}, err
	}
	s.printPosition(res)

	for res.Outcome == OutcomePaused {
		if s.quit {
			return StepperResult{Outcome: res.Outcome, Quit: true}, nil
		}
		if s.interactive {
			fmt.Fprint(s.out, "(retrace) ") //nolint:errcheck
		}
		if !s.in.Scan() {
			break
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		res, err = s.execCommand(line, res)
		if err != nil {
			return StepperResult{}, err
		}
	}

	// Script mode: when input ends, run the rest of the snippet.
	if !s.interactive && res.Outcome == OutcomePaused && !s.quit {
		for res.Outcome == OutcomePaused {
			res, err = s.eng.StepNext()
			if err != nil {
				return StepperResult{}, err
			}
		}
		s.printPosition(res)
	}

	if s.quit {
		return StepperResult{Outcome: res.Outcome, Quit: true}, nil
	}
	return StepperResult{Outcome: res.Outcome}, nil
}

func (s *Stepper) execCommand(line string, res *Result) (*Result, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return res, nil
	}

	switch fields[0] {
	case "help", "h":
		s.help()
	case "next", "n":
		next, err := s.eng.StepNext()
		if err != nil {
			return res, err
		}
		s.printPosition(next)
		return next, nil
	case "continue", "c":
		next := res
		for next.Outcome == OutcomePaused {
			var err error
			next, err = s.eng.StepNext()
			if err != nil {
				return res, err
			}
		}
		s.printPosition(next)
		return next, nil
	case "vars", "v":
		s.printVars(res)
	case "trace", "t":
		s.printTrace(res)
	case "list", "l":
		s.printSource(res)
	case "restart", "r":
		s.eng.RestartStepping()
		next, err := s.eng.StepNext()
		if err != nil {
			return res, err
		}
		s.printPosition(next)
		return next, nil
	case "quit", "q":
		s.quit = true
	default:
		fmt.Fprintln(s.out, "error: unknown command (try help)") //nolint:errcheck
	}

	return res, nil
}

// printPosition reports where the run stands after a step: the paused line
// with its source text, or the final outcome.
func (s *Stepper) printPosition(res *Result) {
	switch res.Outcome {
	case OutcomePaused:
		line := res.State.CurrentLine
		code := ""
		if snip := s.eng.Source(); snip != nil {
			if lines := snip.Lines(); line >= 1 && line <= len(lines) {
				code = strings.TrimSpace(lines[line-1])
			}
		}
		fmt.Fprintf(s.out, "step: line %d: %s\n", line, code) //nolint:errcheck
	case OutcomeCompleted:
		if res.Value != nil {
			fmt.Fprintf(s.out, "completed: %v\n", res.Value) //nolint:errcheck
		} else {
			fmt.Fprintln(s.out, "completed") //nolint:errcheck
		}
	case OutcomeFailed:
		fmt.Fprintf(s.out, "failed: %s\n", res.ErrMessage) //nolint:errcheck
	}
}

func (s *Stepper) printVars(res *Result) {
	if len(res.State.Variables) == 0 {
		fmt.Fprintln(s.out, "no variables yet") //nolint:errcheck
		return
	}
	for _, name := range slices.Sorted(maps.Keys(res.State.Variables)) {
		fmt.Fprintf(s.out, "  %s = %v\n", name, res.State.Variables[name]) //nolint:errcheck
	}
}

func (s *Stepper) printTrace(res *Result) {
	for _, e := range res.State.History {
		switch e.Kind {
		case EntryLineVisit:
			fmt.Fprintf(s.out, "  [step=%d] visit line %d\n", e.Step, e.Line) //nolint:errcheck
		case EntryVarCapture:
			fmt.Fprintf(s.out, "  [step=%d] line %d: %s = %v\n", e.Step, e.Line, e.Name, e.Value) //nolint:errcheck
		case EntryConsole:
			fmt.Fprintf(s.out, "  [step=%d] line %d: console: %s\n", e.Step, e.Line, e.Text) //nolint:errcheck
		case EntryError:
			fmt.Fprintf(s.out, "  [step=%d] line %d: error: %s\n", e.Step, e.Line, e.Message) //nolint:errcheck
		case EntryWarning:
			fmt.Fprintf(s.out, "  [step=%d] line %d: warning: %s\n", e.Step, e.Line, e.Message) //nolint:errcheck
		}
	}
}

func (s *Stepper) printSource(res *Result) {
	snip := s.eng.Source()
	if snip == nil {
		return
	}
	current := res.State.CurrentLine
	for i, text := range snip.Lines() {
		marker := "  "
		if i+1 == current {
			marker = "> "
		}
		fmt.Fprintf(s.out, "%s%3d  %s\n", marker, i+1, text) //nolint:errcheck
	}
}

func (s *Stepper) help() {
	fmt.Fprintln(s.out, "commands:")                        //nolint:errcheck
	fmt.Fprintln(s.out, "  next|n      advance one line")   //nolint:errcheck
	fmt.Fprintln(s.out, "  continue|c  run to completion")  //nolint:errcheck
	fmt.Fprintln(s.out, "  vars|v      show variables")     //nolint:errcheck
	fmt.Fprintln(s.out, "  trace|t     show the history")   //nolint:errcheck
	fmt.Fprintln(s.out, "  list|l      show the source")    //nolint:errcheck
	fmt.Fprintln(s.out, "  restart|r   start over")         //nolint:errcheck
	fmt.Fprintln(s.out, "  quit|q      leave the stepper")  //nolint:errcheck
	fmt.Fprintln(s.out, "  help|h      show this text")     //nolint:errcheck
}
