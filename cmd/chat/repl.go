package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/capitalize-ai/travelers-buddy/internal/config"
	"github.com/capitalize-ai/travelers-buddy/internal/llm"
	"github.com/capitalize-ai/travelers-buddy/internal/model"
	"github.com/capitalize-ai/travelers-buddy/internal/session"
	"github.com/capitalize-ai/travelers-buddy/pkg/logger"
)

type options struct {
	provider    string
	model       string
	plain       bool
	personaFile string
}

func run(ctx context.Context, opts *options, in io.Reader, out io.Writer) error {
	cfg := config.Load()
	if opts.provider != "" {
		cfg.LLMProvider = opts.provider
	}
	if opts.model != "" {
		cfg.LLMModel = opts.model
	}
	if opts.personaFile != "" {
		cfg.PersonaFile = opts.personaFile
	}

	log, err := logger.New("error")
	if err != nil {
		return err
	}
	defer log.Sync()

	persona, err := config.LoadPersona(cfg.PersonaFile)
	if err != nil {
		return err
	}

	provider := cfg.Provider()
	if provider == "" {
		provider = string(llm.ProviderMock)
	}
	client, err := llm.NewClient(llm.Provider(provider), cfg.APIKey(provider), cfg.LLMModel)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}
	log.Debug("completion client ready", zap.String("provider", client.Name()))

	ctrl := session.NewController(session.NewStore(), llm.Instrument(client), session.WithLogger(log))
	r := &repl{ctrl: ctrl, out: out, plain: opts.plain}
	return r.loop(ctx, persona, in)
}

type repl struct {
	ctrl  *session.Controller
	out   io.Writer
	plain bool
	shown int
}

func (r *repl) loop(ctx context.Context, persona model.Persona, in io.Reader) error {
	fmt.Fprintf(r.out, "%s\n%s\n\nConversation starters: %s\n\n",
		persona.Name, persona.Description, strings.Join(persona.Starters, ", "))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprintf(r.out, "Type your query (or '%s' to end): ", session.ExitWord)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit":
			return nil
		case line == "/new":
			r.ctrl.StartNew(ctx)
			r.shown = 0
			fmt.Fprintln(r.out, "Started a new chat.")
		case line == "/list":
			r.list()
		case strings.HasPrefix(line, "/resume"):
			r.resume(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/resume")))
		default:
			r.ctrl.HandleInput(ctx, line)
			r.render()
		}
	}
}

func (r *repl) list() {
	entries := r.ctrl.View().Archive
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No previous chats.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(r.out, "%3d. %s\n", e.Index+1, e.Title)
	}
}

func (r *repl) resume(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > r.ctrl.Store().Len() {
		fmt.Fprintln(r.out, "Usage: /resume N, where N is a number from /list.")
		return
	}
	if err := r.ctrl.Resume(ctx, n-1); err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	r.shown = 0
	r.render()
}

// render prints the turns that have not been printed yet.
func (r *repl) render() {
	v := r.ctrl.View()
	if !v.Active {
		if r.shown > 0 {
			fmt.Fprintln(r.out, "Conversation ended.")
		}
		r.shown = 0
		return
	}

	for _, turn := range v.Turns[r.shown:] {
		if turn.Role == model.RoleUser {
			fmt.Fprintf(r.out, "you> %s\n", turn.Content)
			continue
		}
		fmt.Fprintln(r.out, r.style(turn.Content))
	}
	r.shown = len(v.Turns)

	if v.Notice != "" {
		fmt.Fprintln(r.out, v.Notice)
	}
}

func (r *repl) style(content string) string {
	if r.plain {
		return "buddy> " + content
	}
	styled, err := glamour.Render(content, "dark")
	if err != nil {
		return "buddy> " + content
	}
	return styled
}
