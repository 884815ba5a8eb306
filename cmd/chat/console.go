package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"global-chat/domain"
	"global-chat/errors"
	"global-chat/runtime"
	"global-chat/services"

	"github.com/gookit/color"
)

const helpText = `Commands:
  /register <user> <secret>  create an account and log in
  /login <user> <secret>     log in
  /logout                    log out
  /ai <question>             ask the personal assistant
  /assistant                 show the assistant conversation
  /history                   show the active channel
  /search <terms>            search the active channel
  /channel <id>              switch channel
  /quit                      close the tab
Anything else is sent to the active channel.`

var (
	localStyle     = color.New(color.FgGreen, color.OpBold)
	remoteStyle    = color.New(color.FgCyan)
	serverStyle    = color.New(color.FgYellow)
	assistantStyle = color.New(color.FgMagenta)
	errorStyle     = color.New(color.FgRed)
)

type console struct {
	log     *slog.Logger
	tab     *runtime.Tab
	out     io.Writer
	colours bool

	mu        sync.Mutex
	watched   *services.Assistant
	streamed  map[string]int
	searchMax int
}

func newConsole(log *slog.Logger, tab *runtime.Tab, out io.Writer, colours bool) *console {
	c := &console{log: log, tab: tab, out: out, colours: colours, streamed: make(map[string]int), searchMax: 10}
	tab.OnMessage(func(msg domain.ChatMessage) {
		c.print(c.renderMessage(msg))
	})
	return c
}

// run reads commands until in is exhausted, /quit is typed or ctx ends.
func (c *console) run(ctx context.Context, in io.Reader) {
	c.greet()
	scanner := bufio.NewScanner(in)
	for ctx.Err() == nil && scanner.Scan() {
		if !c.handle(ctx, scanner.Text()) {
			return
		}
	}
}

func (c *console) greet() {
	identity, ok := c.tab.Identity()
	if !ok {
		c.print("Global Chat. Use /register or /login to join, /help for commands.")
		return
	}
	c.print(fmt.Sprintf("Bienvenido de nuevo, %s.", identity.Username))
	c.showHistory()
}

// handle executes one input line and reports whether the console keeps running.
func (c *console) handle(ctx context.Context, line string) bool {
	command, args := parseCommand(line)
	switch command {
	case "":
		return true
	case "/quit":
		return false
	case "/help":
		c.print(helpText)
	case "/register", "/login":
		c.authenticate(ctx, command, args)
	case "/logout":
		if err := c.tab.Logout(); err != nil {
			c.printError(err)
			return true
		}
		c.print("Sesión cerrada.")
	case "/ai":
		c.ask(ctx, strings.Join(args, " "))
	case "/assistant":
		c.showAssistant()
	case "/history":
		c.showHistory()
	case "/search":
		c.search(ctx, strings.Join(args, " "))
	case "/channel":
		c.switchChannel(args)
	default:
		if strings.HasPrefix(command, "/") {
			c.printError(fmt.Errorf("unknown command %s", command))
			return true
		}
		c.send(line)
	}
	return true
}

// parseCommand splits a line into its command and arguments. Plain text has no arguments.
func parseCommand(line string) (string, []string) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return trimmed, nil
	}
	fields := strings.Fields(trimmed)
	return strings.ToLower(fields[0]), fields[1:]
}

func (c *console) authenticate(ctx context.Context, command string, args []string) {
	var username, secret string
	if len(args) > 0 {
		username = args[0]
	}
	if len(args) > 1 {
		secret = strings.Join(args[1:], " ")
	}

	var (
		identity domain.Identity
		err      error
	)
	if command == "/register" {
		identity, err = c.tab.Register(ctx, username, secret)
	} else {
		identity, err = c.tab.Login(ctx, username, secret)
	}
	if err != nil {
		c.printError(err)
		return
	}
	c.print(fmt.Sprintf("Conectado como %s.", identity.Username))
	c.showHistory()
}

func (c *console) send(text string) {
	room, err := c.tab.Room()
	if err != nil {
		c.printError(err)
		return
	}
	identity, _ := c.tab.Identity()
	room.SendLocal(text, identity)
}

func (c *console) ask(ctx context.Context, question string) {
	assistant, err := c.tab.Assistant()
	if err != nil {
		c.printError(err)
		return
	}
	c.watch(assistant)
	if _, err := assistant.Ask(ctx, question); err != nil {
		c.printError(err)
		return
	}
	c.print("")
}

// watch streams the answers of assistant as they grow.
func (c *console) watch(assistant *services.Assistant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watched == assistant {
		return
	}
	c.watched = assistant
	c.streamed = make(map[string]int)
	assistant.OnChange(func(msg domain.ChatMessage) {
		if msg.SenderIsLocal {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		printed, started := c.streamed[msg.ID]
		c.streamed[msg.ID] = len(msg.Text)
		if !started {
			_, _ = fmt.Fprint(c.out, c.style(assistantStyle, domain.AssistantName+": "))
		}
		if len(msg.Text) > printed {
			_, _ = fmt.Fprint(c.out, msg.Text[printed:])
		}
	})
}

func (c *console) showAssistant() {
	assistant, err := c.tab.Assistant()
	if err != nil {
		c.printError(err)
		return
	}
	for _, msg := range assistant.Messages() {
		c.print(c.renderMessage(msg))
	}
}

func (c *console) showHistory() {
	room, err := c.tab.Room()
	if err != nil {
		c.printError(err)
		return
	}
	channel := room.ActiveChannel()
	c.print(c.style(serverStyle, fmt.Sprintf("# %s (%s)", channel.DisplayName, channel.Description)))
	for _, msg := range room.ActiveMessages() {
		c.print(c.renderMessage(msg))
	}
}

func (c *console) search(ctx context.Context, terms string) {
	results, err := c.tab.Search(ctx, terms, c.searchMax)
	if err != nil {
		c.printError(err)
		return
	}
	if len(results) == 0 {
		c.print("Sin resultados.")
		return
	}
	for _, msg := range results {
		c.print(c.renderMessage(msg))
	}
}

func (c *console) switchChannel(args []string) {
	room, err := c.tab.Room()
	if err != nil {
		c.printError(err)
		return
	}
	if len(args) == 0 {
		c.printError(errors.ErrUnknownChannel)
		return
	}
	if err := room.SetActiveChannel(args[0]); err != nil {
		c.printError(err)
		return
	}
	c.showHistory()
}

func (c *console) renderMessage(msg domain.ChatMessage) string {
	at := msg.Timestamp.Format("15:04")
	switch {
	case msg.SenderIsLocal:
		return fmt.Sprintf("[%s] %s %s", at, c.style(localStyle, msg.SenderName+" (tú):"), msg.Text)
	case msg.SenderName == domain.ServerName:
		return fmt.Sprintf("[%s] %s %s", at, c.style(serverStyle, msg.SenderName+":"), msg.Text)
	case msg.ChannelID == domain.AssistantChannelID:
		text := msg.Text
		if msg.IsStreaming {
			text = "..."
		}
		return fmt.Sprintf("[%s] %s %s", at, c.style(assistantStyle, msg.SenderName+":"), text)
	default:
		return fmt.Sprintf("[%s] %s %s", at, c.style(remoteStyle, msg.SenderName+":"), msg.Text)
	}
}

func (c *console) style(style color.Style, text string) string {
	if !c.colours {
		return text
	}
	return style.Render(text)
}

func (c *console) printError(err error) {
	text := errors.UserMessage(err)
	c.log.Debug("Command failed", "error", err)
	c.print(c.style(errorStyle, text))
}

func (c *console) print(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, line)
}
