// Package interactive provides the terminal front end of the configurator.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"device-configurator/internal/discovery"
	"device-configurator/internal/model"
	"device-configurator/internal/service"
)

// Console drives a configuration session from a readline prompt.
type Console struct {
	sessions *service.SessionManager
	scanner  *discovery.ScannerManager
	rl       *readline.Instance
	out      io.Writer
}

// New creates a console bound to the terminal.
func New(sessions *service.SessionManager, scanner *discovery.ScannerManager) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "configurator> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		sessions: sessions,
		scanner:  scanner,
		rl:       rl,
		out:      rl.Stdout(),
	}, nil
}

// NewWithWriter creates a console without a terminal; commands are fed to
// Execute and output goes to out.
func NewWithWriter(sessions *service.SessionManager, scanner *discovery.ScannerManager, out io.Writer) *Console {
	return &Console{sessions: sessions, scanner: scanner, out: out}
}

// Stdout returns a writer that does not garble the prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Status prints session status reports.
func (c *Console) Status(st service.Status) {
	if st.Error != "" && st.Field == nil {
		fmt.Fprintf(c.out, "%s (%s)\n", st.Message, st.Error)
		return
	}
	fmt.Fprintln(c.out, st.Message)
}

// Run reads commands until quit, EOF or ctx ends.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if !c.Execute(ctx, line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the console should
// stop.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	_, rest := splitWord(line)

	switch cmd {
	case "help", "?":
		if len(args) > 0 {
			c.cmdSectionHelp(strings.Join(args, " "))
		} else {
			c.printHelp()
		}
	case "ports", "p":
		c.cmdPorts(ctx)
	case "connect", "c":
		port := ""
		if len(args) > 0 {
			port = args[0]
		}
		c.cmdConnect(ctx, port)
	case "read", "r":
		c.do(func(s *service.ConfigSession) error { return s.ReadAll(ctx) })
	case "show", "s":
		c.cmdShow(strings.Join(args, " "))
	case "set":
		c.cmdSet(rest)
	case "write", "w":
		c.do(func(s *service.ConfigSession) error { return s.WriteAll(ctx) })
	case "reset":
		c.do(func(s *service.ConfigSession) error { return s.FactoryReset(ctx) })
	case "quit", "exit", "q":
		if err := c.sessions.Close(); err != nil {
			fmt.Fprintf(c.out, "Error closing port: %v\n", err)
		}
		return false
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help')\n", cmd)
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `Commands:
  ports                 List serial ports
  connect [port]        Reset, identify and read the device
  read                  Read the configuration again
  show [section]        Show values, optionally of one section
  set <id> <value>      Edit a value (choices take the option index)
  write                 Write every value to the device
  reset                 Restore factory settings
  help [section|id]     This help, a section's help text or a field's constraints
  quit                  Exit`)
}

func (c *Console) cmdPorts(ctx context.Context) {
	ports, err := c.scanner.ScanAll(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if len(ports) == 0 {
		fmt.Fprintln(c.out, "No serial ports found")
		return
	}
	for _, p := range ports {
		line := fmt.Sprintf("  %-20s %s", p.Name, p.Description)
		if p.Vendor != "" {
			line += " (" + p.Vendor + ")"
		}
		fmt.Fprintln(c.out, line)
	}
}

func (c *Console) cmdConnect(ctx context.Context, port string) {
	info, err := c.sessions.Connect(ctx, port)
	if info != nil {
		fmt.Fprintf(c.out, "%s on %s [%s]\n", info.Title, info.Port, info.Identity)
	}
	if err != nil {
		c.printError(err)
	}
}

func (c *Console) cmdShow(section string) {
	info, err := c.sessions.Info()
	if err != nil {
		c.printError(err)
		return
	}

	shown := false
	for _, s := range info.Sections {
		if section != "" && !strings.EqualFold(s.Name, section) {
			continue
		}
		shown = true
		fmt.Fprintf(c.out, "[%s]\n", s.Name)
		for _, item := range s.Items {
			fmt.Fprintf(c.out, "  %-6s %-32s %s\n", item.ID, item.Caption, formatValue(item))
		}
	}
	if !shown {
		fmt.Fprintf(c.out, "No section named %q\n", section)
	}
}

func (c *Console) cmdSectionHelp(section string) {
	info, err := c.sessions.Info()
	if err != nil {
		c.printError(err)
		return
	}
	for _, s := range info.Sections {
		if strings.EqualFold(s.Name, section) {
			fmt.Fprintln(c.out, s.Help)
			return
		}
		for _, item := range s.Items {
			if item.ID == section {
				c.printItemHelp(s.Name, item)
				return
			}
		}
	}
	fmt.Fprintf(c.out, "No section or field named %q\n", section)
}

func (c *Console) printItemHelp(section string, item model.ItemView) {
	fmt.Fprintf(c.out, "%s (%s, %s in %s)\n", item.Caption, item.ID, item.Kind, section)
	switch item.Kind {
	case model.ItemKindInt:
		if item.Min != nil && item.Max != nil {
			fmt.Fprintf(c.out, "  range %d..%d\n", *item.Min, *item.Max)
		}
	case model.ItemKindHex:
		order := "as shown"
		if item.LSB {
			order = "byte order reversed on the wire"
		}
		fmt.Fprintf(c.out, "  up to %d bytes of hex, %s\n", item.MaxLen, order)
	case model.ItemKindText:
		fmt.Fprintf(c.out, "  up to %d characters\n", item.MaxLen)
	case model.ItemKindChoice:
		fmt.Fprintf(c.out, "  options: %s\n", optionList(item.Options))
	case model.ItemKindCheck:
		fmt.Fprintln(c.out, "  true or false")
	}
}

// cmdSet takes the value verbatim after the single separator following the
// id, so text values keep their spacing and may be empty.
func (c *Console) cmdSet(rest string) {
	id, value := splitWord(rest)
	if id == "" {
		fmt.Fprintln(c.out, "Usage: set <id> <value>")
		return
	}

	c.do(func(s *service.ConfigSession) error {
		return s.SetValues(map[string]any{id: value})
	})
}

// splitWord returns the first word of s and everything after the blank that
// ends it.
func splitWord(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func (c *Console) do(fn func(*service.ConfigSession) error) {
	if err := c.sessions.Do(fn); err != nil {
		c.printError(err)
	}
}

func (c *Console) printError(err error) {
	var fieldErr *model.FieldError
	switch {
	case errors.As(err, &fieldErr):
		fmt.Fprintf(c.out, "Field invalid: %v\n", fieldErr)
	case errors.Is(err, model.ErrNotConnected):
		fmt.Fprintf(c.out, "Not connected: %v\n", err)
	case errors.Is(err, model.ErrUnknownDevice):
		fmt.Fprintf(c.out, "Unknown device: %v\n", err)
	default:
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
}

func formatValue(item model.ItemView) string {
	switch item.Kind {
	case model.ItemKindChoice:
		idx, _ := item.Value.(int)
		if idx >= 0 && idx < len(item.Options) {
			return fmt.Sprintf("%d: %s", idx, item.Options[idx].Description)
		}
		return fmt.Sprintf("%d: ?", idx)
	case model.ItemKindCheck:
		if on, _ := item.Value.(bool); on {
			return "on"
		}
		return "off"
	default:
		return fmt.Sprint(item.Value)
	}
}

// optionList renders choice options for the help of a single item.
func optionList(options []model.ChoiceOption) string {
	parts := make([]string, len(options))
	for i, o := range options {
		parts[i] = fmt.Sprintf("%d=%s", i, o.Description)
	}
	return strings.Join(parts, ", ")
}
